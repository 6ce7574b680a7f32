// Package objstore lists and reads the Markdown documents a blog is built
// from. Backends: S3-compatible object storage (minio-go) and any go-billy
// filesystem.
package objstore

import (
	"context"
	"strings"
	"time"
)

// DocumentExt is the extension of documents the blog is built from.
const DocumentExt = ".md"

// Entry is one document in a listing.
type Entry struct {
	Key          string
	LastModified time.Time // zero when the backend did not report one
}

// Store is the read-only view of the backing store the content cache needs.
type Store interface {
	// List returns every document in the store.
	List(ctx context.Context) ([]Entry, error)
	// Read returns the raw text of the document stored under key.
	Read(ctx context.Context, key string) (string, error)
}

// IsDocument reports whether key names a document.
func IsDocument(key string) bool {
	return strings.HasSuffix(key, DocumentExt) && !strings.HasSuffix(key, "/")
}

// LogicalPath strips the document extension from key.
func LogicalPath(key string) string {
	return strings.TrimSuffix(key, DocumentExt)
}

// ObjectURL returns the public base URL of a bucket, e.g.
// "https://s3.example.com/blogs". A scheme already present on endpoint wins
// over useSSL.
func ObjectURL(endpoint, bucket string, useSSL bool) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	if bucket == "" {
		return endpoint
	}
	return endpoint + "/" + bucket
}
