// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/blinklabs-io/worksync/database/plugin/blob"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"
)

const startupTimeout = 30 * time.Second

// BlobStoreGCS stores delivery payloads in a Google Cloud Storage bucket
type BlobStoreGCS struct {
	promRegistry    prometheus.Registerer
	logger          *plugin.PrintfLogger
	metrics         *blob.Metrics
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	credentialsFile string
}

// New creates a new GCS-backed blob store from a URL of the form
// gcs://bucket
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	bucketName, _ := strings.CutPrefix(dataDir, "gcs://")
	if bucketName == "" || bucketName == dataDir {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new GCS-backed blob store using options
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	db := &BlobStoreGCS{}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = plugin.NewPrintfLogger(nil)
	}
	return db, nil
}

func validateCredentials(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("GCS credentials file does not exist: %s", path)
		}
		return fmt.Errorf("GCS credentials file is not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("GCS credentials path is a directory: %s", path)
	}
	return nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if d.credentialsFile != "" {
		if err := validateCredentials(d.credentialsFile); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	clientOpts := []option.ClientOption{
		storage.WithDisabledClientMetrics(),
	}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewGRPCClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf(
			"gcs blob: failed in creating storage client: %w",
			err,
		)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.metrics = blob.NewMetrics(d.promRegistry, "gcs")
	d.logger.Infof("gcs blob store using bucket %q", d.bucketName)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

// Close closes the GCS client
func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.bucket = nil
	return err
}

// Get retrieves a payload from the bucket
func (d *BlobStoreGCS) Get(ctx context.Context, key string) ([]byte, error) {
	if d.bucket == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	r, err := d.bucket.Object(key).NewReader(ctx)
	if err != nil {
		d.metrics.Observe("get", 0, err)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, types.ErrBlobKeyNotFound
		}
		d.logger.Errorf("gcs get %q failed: %v", key, err)
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	d.metrics.Observe("get", len(data), err)
	if err != nil {
		d.logger.Errorf("gcs read %q failed: %v", key, err)
		return nil, err
	}
	return data, nil
}

// Set writes a payload to the bucket
func (d *BlobStoreGCS) Set(ctx context.Context, key string, val []byte) error {
	if d.bucket == nil {
		return types.ErrBlobStoreUnavailable
	}
	w := d.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(val); err != nil {
		_ = w.Close()
		d.metrics.Observe("set", 0, err)
		return err
	}
	// The object is only committed on Close
	err := w.Close()
	d.metrics.Observe("set", len(val), err)
	if err != nil {
		d.logger.Errorf("gcs put %q failed: %v", key, err)
	}
	return err
}

// Delete removes a payload from the bucket
func (d *BlobStoreGCS) Delete(ctx context.Context, key string) error {
	if d.bucket == nil {
		return types.ErrBlobStoreUnavailable
	}
	err := d.bucket.Object(key).Delete(ctx)
	d.metrics.Observe("delete", 0, err)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}
