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
package az

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"gocloud.dev/blob/azureblob"
)

var (
	clients   = make(map[string]*azblob.Client)
	clientsMu sync.Mutex
)

// One client per storage account, authenticated with the default credential chain.
func getClient(accountURL string) (*azblob.Client, error) {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	if c, ok := clients[accountURL]; ok {
		return c, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create azure credential: %w", err)
	}
	c, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client for %q: %w", accountURL, err)
	}
	clients[accountURL] = c
	return c, nil
}

// ValidateObjectURL checks for the
// https://<account>.blob.core.windows.net/<container>[/<key>] shape.
func ValidateObjectURL(objectURL string) error {
	u, err := url.Parse(objectURL)
	if err != nil {
		return fmt.Errorf("parse azure blob url %q: %w", objectURL, err)
	}
	if u.Path == "" {
		return fmt.Errorf("missing container in azure blob url %v", objectURL)
	}
	if u.Host == "" {
		return fmt.Errorf("missing service in azure blob url %v", objectURL)
	}
	if !strings.Contains(u.Host, ".blob.") {
		return fmt.Errorf("invalid service in azure blob url %v", objectURL)
	}
	return nil
}

func splitObjectPath(objectPath string) (accountURL, containerName, key string, err error) {
	if err := ValidateObjectURL(objectPath); err != nil {
		return "", "", "", err
	}
	u, err := url.Parse(objectPath)
	if err != nil {
		return "", "", "", fmt.Errorf("parse azure blob url %q: %w", objectPath, err)
	}
	blobPath := strings.TrimPrefix(u.Path, "/")
	containerName = strings.Split(blobPath, "/")[0]
	if len(blobPath) > len(containerName) {
		key = strings.TrimPrefix(strings.TrimPrefix(blobPath, containerName), "/")
	}
	return "https://" + u.Host, containerName, key, nil
}

// ListAllObjects returns the keys under the container url, relative to its prefix.
func ListAllObjects(ctx context.Context, dirURL string) ([]string, error) {
	accountURL, containerName, prefix, err := splitObjectPath(dirURL)
	if err != nil {
		return nil, err
	}
	c, err := getClient(accountURL)
	if err != nil {
		return nil, err
	}
	options := &container.ListBlobsFlatOptions{}
	if prefix != "" {
		options.Prefix = &prefix
	}
	pager := c.NewListBlobsFlatPager(containerName, options)
	var keys []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects of %q: %w", dirURL, err)
		}
		for _, blobItem := range page.Segment.BlobItems {
			objectName := *blobItem.Name
			if prefix != "" {
				objectName = strings.TrimPrefix(strings.TrimPrefix(objectName, prefix), "/")
			}
			keys = append(keys, objectName)
		}
	}
	return keys, nil
}

// ObjectSize returns the size of the blob at the url, via the gocloud bucket API.
func ObjectSize(ctx context.Context, objectURL string) (int64, error) {
	accountURL, containerName, key, err := splitObjectPath(objectURL)
	if err != nil {
		return 0, err
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return 0, fmt.Errorf("create azure credential: %w", err)
	}
	containerClient, err := container.NewClient(accountURL+"/"+containerName, cred, nil)
	if err != nil {
		return 0, fmt.Errorf("create container client for %q: %w", objectURL, err)
	}
	bucket, err := azureblob.OpenBucket(ctx, containerClient, nil)
	if err != nil {
		return 0, fmt.Errorf("open bucket for %q: %w", objectURL, err)
	}
	defer bucket.Close()
	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("attributes of %q: %w", objectURL, err)
	}
	return attrs.Size, nil
}

// NewObjectReader streams the blob at the url with download retries.
func NewObjectReader(ctx context.Context, objectURL string) (io.ReadCloser, error) {
	accountURL, containerName, key, err := splitObjectPath(objectURL)
	if err != nil {
		return nil, err
	}
	c, err := getClient(accountURL)
	if err != nil {
		return nil, err
	}
	get, err := c.DownloadStream(ctx, containerName, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create download stream for %q: %w", objectURL, err)
	}
	return get.NewRetryReader(ctx, &azblob.RetryReaderOptions{MaxRetries: 10}), nil
}
