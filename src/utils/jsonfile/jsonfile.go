// Package jsonfile persists run artifacts, the anonymization report among
// them, as pretty-printed JSON files.
package jsonfile

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/dataveil/dataveil/src/utils"
)

// JsonFile owns one JSON document on disk holding a value of type T.
// Accessors serialize behind the mutex so concurrent workers can touch the
// same file.
type JsonFile[T any] struct {
	sync.Mutex
	FilePath string
}

func NewJsonFile[T any](filePath string) *JsonFile[T] {
	return &JsonFile[T]{FilePath: filePath}
}

// Create writes obj as the whole document, replacing any previous content.
func (j *JsonFile[T]) Create(obj *T) error {
	j.Lock()
	defer j.Unlock()
	return j.write(obj)
}

func (j *JsonFile[T]) Read() (*T, error) {
	j.Lock()
	defer j.Unlock()
	return j.read()
}

func (j *JsonFile[T]) read() (*T, error) {
	bs, err := os.ReadFile(j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", j.FilePath, err)
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("%s holds no document", j.FilePath)
	}
	obj := new(T)
	if err := json.Unmarshal(bs, obj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", j.FilePath, err)
	}
	return obj, nil
}

// Update applies fn to the current document, or to a zero T when the file
// does not exist yet, and writes the result back.
func (j *JsonFile[T]) Update(fn func(*T)) error {
	j.Lock()
	defer j.Unlock()
	obj := new(T)
	if utils.FileOrFolderExists(j.FilePath) {
		var err error
		obj, err = j.read()
		if err != nil {
			return err
		}
	}
	fn(obj)
	return j.write(obj)
}

func (j *JsonFile[T]) write(obj *T) error {
	// Indented output, these files are meant to be read by people.
	bs, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal for %s: %w", j.FilePath, err)
	}
	if err := os.WriteFile(j.FilePath, bs, 0644); err != nil {
		return fmt.Errorf("write %s: %w", j.FilePath, err)
	}
	return nil
}

func (j *JsonFile[T]) Delete() error {
	j.Lock()
	defer j.Unlock()
	return os.Remove(j.FilePath)
}
