//go:build unit

package datastore

import (
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/dataveil/dataveil/test/utils"
)

func TestNewDataStorePicksBackendByPrefix(t *testing.T) {
	assert.IsType(t, &S3DataStore{}, NewDataStore("s3://bucket/dir"))
	assert.IsType(t, &GCSDataStore{}, NewDataStore("gs://bucket/dir"))
	assert.IsType(t, &AzDataStore{}, NewDataStore("https://account.blob.core.windows.net/container"))
	assert.IsType(t, &LocalDataStore{}, NewDataStore("/var/data"))
}

func TestLocalDataStore(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, NewLocalDataStore(dir).Join(dir, "one.csv"), "name\nAlice\n")
	testutils.WriteFile(t, NewLocalDataStore(dir).Join(dir, "two.csv"), "name\nBob\n")
	testutils.WriteFile(t, NewLocalDataStore(dir).Join(dir, "skip.json"), "{}")

	ds := NewDataStore(dir)

	matches, err := ds.Glob("*.csv")
	require.NoError(t, err)
	sort.Strings(matches)
	require.Len(t, matches, 2)
	assert.Contains(t, matches[0], "one.csv")
	assert.Contains(t, matches[1], "two.csv")

	size, err := ds.FileSize(matches[0])
	require.NoError(t, err)
	assert.Equal(t, int64(len("name\nAlice\n")), size)

	abs, err := ds.AbsolutePath(matches[0])
	require.NoError(t, err)
	assert.Contains(t, abs, "one.csv")

	reader, err := ds.Open(matches[0])
	require.NoError(t, err)
	defer reader.Close()
	contents, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "name\nAlice\n", string(contents))

	_, err = ds.FileSize(ds.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
