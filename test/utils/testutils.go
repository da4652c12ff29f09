package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dataveil/dataveil/src/utils"
)

func FatalIfError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// CreateTempFile writes contents to a fresh file under dir and returns its
// path. The caller removes it when the test is done.
func CreateTempFile(dir string, contents string, ext string) (string, error) {
	file, err := os.CreateTemp(dir, fmt.Sprintf("temp-*.%s", ext))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(contents); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return file.Name(), nil
}

func CreateTempOutputDir() string {
	outputDir, err := os.MkdirTemp("", "dataveil-output")
	if err != nil {
		utils.ErrExit("failed to create temp output dir for testing: %v", err)
	}

	return outputDir
}

func RemoveTempOutputDir(outputDir string) {
	err := os.RemoveAll(outputDir)
	if err != nil {
		utils.ErrExit("failed to remove temp output dir: %v", err)
	}
}

// ReadFileToString reads a whole file, failing the test on error.
func ReadFileToString(t *testing.T, path string) string {
	t.Helper()
	bs, err := os.ReadFile(path)
	FatalIfError(t, err)
	return string(bs)
}

// WriteFile creates path with contents, failing the test on error.
func WriteFile(t *testing.T, path string, contents string) {
	t.Helper()
	FatalIfError(t, os.MkdirAll(filepath.Dir(path), 0755))
	FatalIfError(t, os.WriteFile(path, []byte(contents), 0644))
}
