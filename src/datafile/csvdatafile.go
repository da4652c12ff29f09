package datafile

import (
	"encoding/csv"
	"fmt"
	"io"
)

type CsvTableReader struct {
	fileName string
	closer   io.Closer
	reader   *csv.Reader
	header   []string
}

func newCsvTableReader(fileName string, rc io.ReadCloser, delimiter string) (*CsvTableReader, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("empty delimiter for csv file %q", fileName)
	}
	reader := csv.NewReader(rc)
	reader.Comma = []rune(delimiter)[0]
	reader.FieldsPerRecord = -1 // rows may be ragged, the caller deals with short ones
	reader.LazyQuotes = true

	return &CsvTableReader{
		fileName: fileName,
		closer:   rc,
		reader:   reader,
	}, nil
}

// Header returns the first record of the file. io.EOF means an empty file.
func (df *CsvTableReader) Header() ([]string, error) {
	if df.header != nil {
		return df.header, nil
	}
	record, err := df.reader.Read()
	if err != nil {
		return nil, err
	}
	df.header = record
	return df.header, nil
}

func (df *CsvTableReader) ReadRow() ([]string, error) {
	if df.header == nil {
		if _, err := df.Header(); err != nil {
			return nil, err
		}
	}
	return df.reader.Read()
}

func (df *CsvTableReader) GetBytesRead() int64 {
	return df.reader.InputOffset()
}

func (df *CsvTableReader) Close() {
	df.closer.Close()
}

type CsvTableWriter struct {
	fileName string
	closer   io.Closer
	writer   *csv.Writer
}

func newCsvTableWriter(fileName string, wc io.WriteCloser, delimiter string) *CsvTableWriter {
	writer := csv.NewWriter(wc)
	writer.Comma = []rune(delimiter)[0]
	return &CsvTableWriter{
		fileName: fileName,
		closer:   wc,
		writer:   writer,
	}
}

func (w *CsvTableWriter) WriteHeader(record []string) error {
	return w.WriteRow(record)
}

func (w *CsvTableWriter) WriteRow(record []string) error {
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("write record to %q: %w", w.fileName, err)
	}
	return nil
}

func (w *CsvTableWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", w.fileName, err)
	}
	return w.closer.Close()
}
