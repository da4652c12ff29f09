/*
Copyright (c) DataVeil, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
// Implementation of the DataStore interface for when the data files are hosted on azure blob storage.
package datastore

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/dataveil/dataveil/src/utils"
	"github.com/dataveil/dataveil/src/utils/az"
)

type AzDataStore struct {
	url *url.URL
}

func NewAzDataStore(dataDir string) *AzDataStore {
	u, err := url.Parse(dataDir)
	if err != nil {
		utils.ErrExit("invalid azure resource URL: %v", dataDir)
	}
	return &AzDataStore{url: u}
}

// Search and return all keys within the container matching the given pattern.
func (ds *AzDataStore) Glob(pattern string) ([]string, error) {
	objectNames, err := az.ListAllObjects(context.Background(), ds.url.String())
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

// No-op for Azure URLs.
func (ds *AzDataStore) AbsolutePath(filePath string) (string, error) {
	return filePath, nil
}

func (ds *AzDataStore) FileSize(filePath string) (int64, error) {
	return az.ObjectSize(context.Background(), filePath)
}

// filepath.Join would mangle the URL scheme (https://... to https:/...), hence plain "/" joining.
func (ds *AzDataStore) Join(elem ...string) string {
	return strings.Join(elem, "/")
}

func (ds *AzDataStore) Open(objectPath string) (io.ReadCloser, error) {
	return az.NewObjectReader(context.Background(), objectPath)
}
