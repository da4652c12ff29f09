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
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

var (
	client     *storage.Client
	clientOnce sync.Once
	clientErr  error
)

// The client authenticates with application default credentials.
func getClient(ctx context.Context) (*storage.Client, error) {
	clientOnce.Do(func() {
		c, err := storage.NewClient(ctx)
		if err != nil {
			clientErr = fmt.Errorf("create gcs client: %w", err)
			return
		}
		client = c
	})
	return client, clientErr
}

// ValidateObjectURL checks that a gs:// url carries a bucket name.
func ValidateObjectURL(objectURL string) error {
	u, err := url.Parse(objectURL)
	if err != nil {
		return fmt.Errorf("parse gcs url %q: %w", objectURL, err)
	}
	if u.Host == "" {
		return fmt.Errorf("missing bucket in gcs url %v", objectURL)
	}
	return nil
}

func splitObjectPath(objectPath string) (string, string, error) {
	u, err := url.Parse(objectPath)
	if err != nil {
		return "", "", fmt.Errorf("parse gcs url %q: %w", objectPath, err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/") // keys are stored without the leading "/"
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in gcs url %v", objectPath)
	}
	if key == "" {
		return "", "", fmt.Errorf("missing key in gcs url %v", objectPath)
	}
	return bucket, key, nil
}

// ListAllObjects returns the keys under the gs:// dir url, relative to its prefix.
func ListAllObjects(ctx context.Context, dirURL string) ([]string, error) {
	c, err := getClient(ctx)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(dirURL)
	if err != nil {
		return nil, fmt.Errorf("parse gcs url %q: %w", dirURL, err)
	}
	bucket := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	query := &storage.Query{}
	if prefix != "" {
		query.Prefix = prefix
	}
	objectIter := c.Bucket(bucket).Objects(ctx, query)
	var objectNames []string
	for {
		attrs, err := objectIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Bucket(%q).Objects: %w", bucket, err)
		}
		objectName := attrs.Name
		if prefix != "" {
			objectName = strings.TrimPrefix(objectName, prefix)
			objectName = strings.TrimPrefix(objectName, "/")
		}
		objectNames = append(objectNames, objectName)
	}
	return objectNames, nil
}

// ObjectSize returns the size of the object at the gs:// url.
func ObjectSize(ctx context.Context, objectURL string) (int64, error) {
	c, err := getClient(ctx)
	if err != nil {
		return 0, err
	}
	bucket, key, err := splitObjectPath(objectURL)
	if err != nil {
		return 0, err
	}
	attrs, err := c.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return 0, fmt.Errorf("attributes of object %q: %w", objectURL, err)
	}
	return attrs.Size, nil
}

// NewObjectReader streams the object at the gs:// url.
func NewObjectReader(ctx context.Context, objectURL string) (io.ReadCloser, error) {
	c, err := getClient(ctx)
	if err != nil {
		return nil, err
	}
	bucketName, keyName, err := splitObjectPath(objectURL)
	if err != nil {
		return nil, err
	}
	r, err := c.Bucket(bucketName).Object(keyName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open reader for %q: %w", objectURL, err)
	}
	return r, nil
}
