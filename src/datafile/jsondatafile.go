package datafile

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ReadDocument parses a whole JSON document file into generic maps and slices.
func ReadDocument(fileName string, r io.Reader) (interface{}, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", fileName, err)
	}
	var doc interface{}
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, fmt.Errorf("parse document %q: %w", fileName, err)
	}
	return doc, nil
}

// WriteDocument serializes the document compactly, the way it is stored.
func WriteDocument(fileName string, w io.Writer, doc interface{}) error {
	bs, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize document %q: %w", fileName, err)
	}
	if _, err := w.Write(bs); err != nil {
		return fmt.Errorf("write document %q: %w", fileName, err)
	}
	return nil
}
