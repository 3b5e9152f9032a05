// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcsv

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// A GCSOpener reads logs stored in Google Cloud Storage. Names have
// the form gs://bucket/object.
type GCSOpener struct {
	client *storage.Client
}

// NewGCSOpener returns a GCSOpener using a new storage client. The
// caller must Close it.
func NewGCSOpener(ctx context.Context, opts ...option.ClientOption) (*GCSOpener, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSOpener{client: client}, nil
}

func (o *GCSOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCSName(name)
	if err != nil {
		return nil, err
	}
	return o.client.Bucket(bucket).Object(object).NewReader(ctx)
}

// Close releases the storage client.
func (o *GCSOpener) Close() error {
	return o.client.Close()
}

// ParseGCSName splits gs://bucket/object into its bucket and object.
func ParseGCSName(name string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(name, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%q is not a gs:// name", name)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%q does not name a bucket and an object", name)
	}
	return bucket, object, nil
}
