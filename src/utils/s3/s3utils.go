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
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gocloud.dev/blob/s3blob"
)

var (
	client     *s3.Client
	clientOnce sync.Once
	clientErr  error
)

func getClient(ctx context.Context) (*s3.Client, error) {
	clientOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			clientErr = fmt.Errorf("load aws config: %w", err)
			return
		}
		client = s3.NewFromConfig(cfg)
	})
	return client, clientErr
}

// ValidateObjectURL checks that an s3:// url carries a bucket name.
func ValidateObjectURL(objectURL string) error {
	u, err := url.Parse(objectURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("missing bucket in s3 url %v", objectURL)
	}
	return nil
}

func splitObjectPath(objectPath string) (string, string, error) {
	u, err := url.Parse(objectPath)
	if err != nil {
		return "", "", err
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/") // keys are stored without the leading "/"
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in s3 url %v", objectPath)
	}
	if key == "" {
		return "", "", fmt.Errorf("missing key in s3 url %v", objectPath)
	}
	return bucket, key, nil
}

// ListAllObjects returns the keys under the s3:// dir url, relative to its prefix.
// Uses the paginator, the plain list API has a fetch limit.
func ListAllObjects(ctx context.Context, dirURL string) ([]string, error) {
	c, err := getClient(ctx)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(dirURL)
	if err != nil {
		return nil, fmt.Errorf("parse s3 url %q: %w", dirURL, err)
	}
	bucket := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	query := &s3.ListObjectsV2Input{Bucket: &bucket}
	if prefix != "" {
		query.Prefix = &prefix
	}
	p := s3.NewListObjectsV2Paginator(c, query)

	var objectNames []string
	for page := 1; p.HasMorePages(); page++ {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects page %d of %q: %w", page, dirURL, err)
		}
		for _, obj := range out.Contents {
			objectName := *obj.Key
			if prefix != "" {
				objectName = strings.TrimPrefix(objectName, prefix)
				objectName = strings.TrimPrefix(objectName, "/")
			}
			objectNames = append(objectNames, objectName)
		}
	}
	return objectNames, nil
}

// ObjectSize returns the content length of the object at the s3:// url.
func ObjectSize(ctx context.Context, objectURL string) (int64, error) {
	c, err := getClient(ctx)
	if err != nil {
		return 0, err
	}
	bucket, key, err := splitObjectPath(objectURL)
	if err != nil {
		return 0, err
	}
	head, err := c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("head object %q: %w", objectURL, err)
	}
	return head.ContentLength, nil
}

// NewObjectReader streams the object at the s3:// url.
func NewObjectReader(ctx context.Context, objectURL string) (io.ReadCloser, error) {
	c, err := getClient(ctx)
	if err != nil {
		return nil, err
	}
	bucketName, keyName, err := splitObjectPath(objectURL)
	if err != nil {
		return nil, err
	}
	bucket, err := s3blob.OpenBucketV2(ctx, c, bucketName, nil)
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", bucketName, err)
	}
	r, err := bucket.NewReader(ctx, keyName, nil)
	if err != nil {
		return nil, fmt.Errorf("open reader for %q: %w", objectURL, err)
	}
	return r, nil
}
