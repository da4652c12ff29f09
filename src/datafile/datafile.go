package datafile

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
)

const (
	CSV  = "csv"
	JSON = "json"
)

// Descriptor carries the file-level options of a run's input files.
type Descriptor struct {
	FileFormat string `json:"FileFormat"`
	Delimiter  string `json:"Delimiter"`
}

// TableReader yields the records of one tabular data file. The first record is
// the header; Header reads it on demand and ReadRow never returns it.
type TableReader interface {
	Header() ([]string, error)
	ReadRow() ([]string, error)
	GetBytesRead() int64
	Close()
}

// TableWriter persists a header and records to an output file. Close flushes
// and reports any buffered write error.
type TableWriter interface {
	WriteHeader(record []string) error
	WriteRow(record []string) error
	Close() error
}

func NewTableReader(fileName string, reader io.ReadCloser, descriptor *Descriptor) (TableReader, error) {
	log.Infof("creating table reader for %q with descriptor: %s", fileName, spew.Sdump(descriptor))
	switch descriptor.FileFormat {
	case CSV:
		return newCsvTableReader(fileName, reader, descriptor.Delimiter)
	default:
		panic(fmt.Sprintf("unknown table file format %q", descriptor.FileFormat))
	}
}

func NewTableWriter(fileName string, writer io.WriteCloser, descriptor *Descriptor) TableWriter {
	switch descriptor.FileFormat {
	case CSV:
		return newCsvTableWriter(fileName, writer, descriptor.Delimiter)
	default:
		panic(fmt.Sprintf("unknown table file format %q", descriptor.FileFormat))
	}
}
