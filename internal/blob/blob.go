// Package blob writes export documents to a local directory or an
// S3-compatible bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

// Driver names.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// Info describes a stored object.
type Info struct {
	Key         string
	Size        int64
	ContentType string
	// Location is a human-readable address: a file path or s3://bucket/key.
	Location string
}

// Store is a flat key/value object store. Put overwrites.
type Store interface {
	Driver() string
	Put(ctx context.Context, key string, data []byte, contentType string) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Target is a parsed export destination.
type Target struct {
	Driver string
	Bucket string // s3 only
	Root   string // fs only: directory holding Key
	Key    string
}

// ParseTarget accepts "s3://bucket/key" or a local file path.
func ParseTarget(dest string) (Target, error) {
	if dest == "" {
		return Target{}, fmt.Errorf("empty destination")
	}
	if strings.HasPrefix(dest, "s3://") {
		u, err := url.Parse(dest)
		if err != nil {
			return Target{}, fmt.Errorf("parse %q: %w", dest, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Target{}, fmt.Errorf("s3 destination %q needs a bucket and a key", dest)
		}
		return Target{Driver: DriverS3, Bucket: u.Host, Key: key}, nil
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return Target{}, err
	}
	return Target{Driver: DriverFS, Root: filepath.Dir(abs), Key: filepath.Base(abs)}, nil
}

// Open returns a store for t. s3cfg supplies region and endpoint for the
// s3 driver; its Bucket is taken from t.
func Open(ctx context.Context, t Target, s3cfg S3Config) (Store, error) {
	switch t.Driver {
	case DriverFS:
		return NewFSStore(t.Root)
	case DriverS3:
		s3cfg.Bucket = t.Bucket
		return NewS3Store(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", t.Driver)
	}
}
