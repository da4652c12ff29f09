package datastore

import (
	"io"
	"strings"
)

// DataStore abstracts where the input data files live: a local directory or an
// object store bucket. Paths handed back by Glob are fully qualified and can be
// passed to the other methods as-is.
type DataStore interface {
	Glob(pattern string) ([]string, error)
	AbsolutePath(path string) (string, error)
	FileSize(path string) (int64, error)
	Join(elem ...string) string
	Open(path string) (io.ReadCloser, error)
}

func NewDataStore(dataDir string) DataStore {
	switch {
	case strings.HasPrefix(dataDir, "s3://"):
		return NewS3DataStore(dataDir)
	case strings.HasPrefix(dataDir, "gs://"):
		return NewGCSDataStore(dataDir)
	case strings.HasPrefix(dataDir, "https://"):
		return NewAzDataStore(dataDir)
	}
	return NewLocalDataStore(dataDir)
}
