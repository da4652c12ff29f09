// Implementation of the DataStore interface for when the data files are hosted on a gcs bucket.
package datastore

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/dataveil/dataveil/src/utils"
	"github.com/dataveil/dataveil/src/utils/gcs"
)

type GCSDataStore struct {
	url *url.URL
}

func NewGCSDataStore(dataDir string) *GCSDataStore {
	u, err := url.Parse(dataDir)
	if err != nil {
		utils.ErrExit("invalid gcs resource URL: %v", dataDir)
	}
	return &GCSDataStore{url: u}
}

// Search and return all keys within the bucket matching the given pattern.
func (ds *GCSDataStore) Glob(pattern string) ([]string, error) {
	objectNames, err := gcs.ListAllObjects(context.Background(), ds.url.String())
	if err != nil {
		return nil, err
	}
	pattern = strings.Replace(pattern, "*", ".*", -1)
	re := regexp.MustCompile(ds.url.String() + "/" + pattern + "$")
	var resultSet []string
	for _, objectName := range objectNames {
		objectName = ds.url.String() + "/" + objectName
		if re.MatchString(objectName) {
			resultSet = append(resultSet, objectName) // Simulate /path/to/data-dir/file behaviour.
		}
	}
	return resultSet, nil
}

// No-op for GCS URLs.
func (ds *GCSDataStore) AbsolutePath(filePath string) (string, error) {
	return filePath, nil
}

func (ds *GCSDataStore) FileSize(filePath string) (int64, error) {
	return gcs.ObjectSize(context.Background(), filePath)
}

// filepath.Join would mangle the URL scheme (gs://... to gs:/...), hence plain "/" joining.
func (ds *GCSDataStore) Join(elem ...string) string {
	return strings.Join(elem, "/")
}

func (ds *GCSDataStore) Open(objectPath string) (io.ReadCloser, error) {
	return gcs.NewObjectReader(context.Background(), objectPath)
}
