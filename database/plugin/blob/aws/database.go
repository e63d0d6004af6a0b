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
package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/blinklabs-io/worksync/database/plugin/blob"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultTimeout = 60 * time.Second

// BlobStoreS3 stores delivery payloads in an AWS S3 (or compatible) bucket
type BlobStoreS3 struct {
	promRegistry prometheus.Registerer
	logger       *plugin.PrintfLogger
	metrics      *blob.Metrics
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
	pathStyle    bool
}

// New creates a new S3-backed blob store from a URL of the form
// s3://bucket[/prefix]
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	path, ok := strings.CutPrefix(dataDir, "s3://")
	if !ok {
		return nil, errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return nil, errors.New("s3 blob: bucket not set")
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new S3-backed blob store using options. No
// network access happens until Start()
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	db := &BlobStoreS3{}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = plugin.NewPrintfLogger(nil)
	}
	db.prefix = normalizePrefix(db.prefix)
	return db, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (d *BlobStoreS3) opContext(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	timeout := d.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (d *BlobStoreS3) fullKey(key string) string {
	return d.prefix + key
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	ctx, cancel := d.opContext(context.Background())
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	if d.region != "" {
		awsCfg.Region = d.region
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			o.BaseEndpoint = aws.String(d.endpoint)
		}
		o.UsePathStyle = d.pathStyle
	})
	d.metrics = blob.NewMetrics(d.promRegistry, "s3")
	d.logger.Infof("s3 blob store using bucket %q", d.bucket)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreS3) Stop() error {
	// The S3 client holds no resources that need releasing
	return nil
}

// Close implements the BlobStore interface
func (d *BlobStoreS3) Close() error {
	return d.Stop()
}

// Get retrieves a payload from S3
func (d *BlobStoreS3) Get(ctx context.Context, key string) ([]byte, error) {
	if d.client == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
	})
	if err != nil {
		d.metrics.Observe("get", 0, err)
		if isS3NotFound(err) {
			return nil, types.ErrBlobKeyNotFound
		}
		d.logger.Errorf("s3 get %q failed: %v", key, err)
		return nil, err
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	d.metrics.Observe("get", len(data), err)
	if err != nil {
		d.logger.Errorf("s3 read %q failed: %v", key, err)
		return nil, err
	}
	d.logger.Debugf("s3 get %q ok (%d bytes)", key, len(data))
	return data, nil
}

// Set writes a payload to S3
func (d *BlobStoreS3) Set(ctx context.Context, key string, val []byte) error {
	if d.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
		Body:   bytes.NewReader(val),
	})
	d.metrics.Observe("set", len(val), err)
	if err != nil {
		d.logger.Errorf("s3 put %q failed: %v", key, err)
		return err
	}
	d.logger.Debugf("s3 put %q ok (%d bytes)", key, len(val))
	return nil
}

// Delete removes a payload from S3
func (d *BlobStoreS3) Delete(ctx context.Context, key string) error {
	if d.client == nil {
		return types.ErrBlobStoreUnavailable
	}
	ctx, cancel := d.opContext(ctx)
	defer cancel()
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.fullKey(key)),
	})
	d.metrics.Observe("delete", 0, err)
	if err != nil && !isS3NotFound(err) {
		d.logger.Errorf("s3 delete %q failed: %v", key, err)
		return err
	}
	return nil
}
