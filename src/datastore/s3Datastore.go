// Implementation of the DataStore interface for when the data files are hosted on an s3 bucket.
package datastore

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/dataveil/dataveil/src/utils"
	"github.com/dataveil/dataveil/src/utils/s3"
)

type S3DataStore struct {
	url *url.URL
}

func NewS3DataStore(dataDir string) *S3DataStore {
	u, err := url.Parse(dataDir)
	if err != nil {
		utils.ErrExit("invalid s3 resource URL: %v", dataDir)
	}
	return &S3DataStore{url: u}
}

// Search and return all keys within the bucket matching the given pattern.
func (ds *S3DataStore) Glob(pattern string) ([]string, error) {
	objectNames, err := s3.ListAllObjects(context.Background(), ds.url.String())
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

// No-op for S3 URLs.
func (ds *S3DataStore) AbsolutePath(filePath string) (string, error) {
	return filePath, nil
}

func (ds *S3DataStore) FileSize(filePath string) (int64, error) {
	return s3.ObjectSize(context.Background(), filePath)
}

// filepath.Join would mangle the URL scheme (s3://... to s3:/...), hence plain "/" joining.
func (ds *S3DataStore) Join(elem ...string) string {
	return strings.Join(elem, "/")
}

func (ds *S3DataStore) Open(objectPath string) (io.ReadCloser, error) {
	return s3.NewObjectReader(context.Background(), objectPath)
}
