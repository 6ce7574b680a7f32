package objstore

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds S3 connection settings.
type MinioConfig struct {
	// Endpoint is the server host, optionally with scheme
	// (e.g. "s3.amazonaws.com" or "http://localhost:9000").
	Endpoint string

	// Bucket holds the documents.
	Bucket string

	// Region is passed to the client; empty lets the SDK discover it.
	Region string

	AccessKey string
	SecretKey string

	// UseSSL selects HTTPS when Endpoint has no scheme.
	UseSSL bool

	// Prefix restricts the listing. It is stripped from returned keys.
	Prefix string

	// Client is an optional pre-configured client. When set the connection
	// fields above are ignored.
	Client *minio.Client
}

func (c *MinioConfig) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	return nil
}

// MinioStore reads documents from an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinio creates a Store backed by an S3-compatible bucket.
func NewMinio(cfg MinioConfig) (*MinioStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
		var err error
		client, err = minio.New(host, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// splitEndpoint turns "https://host:port" into ("host:port", true). Endpoints
// without a scheme keep the useSSL setting.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), useSSL
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}
	return u.Host, u.Scheme == "https"
}

// Bucket returns the bucket name.
func (m *MinioStore) Bucket() string { return m.bucket }

// List walks the bucket recursively and returns every document.
func (m *MinioStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    m.prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, m.translate(object.Err, "list objects", m.prefix)
		}
		key := strings.TrimPrefix(object.Key, m.prefix)
		if !IsDocument(key) {
			continue
		}
		entries = append(entries, Entry{Key: key, LastModified: object.LastModified})
	}
	return entries, nil
}

// Read fetches the object stored under key.
func (m *MinioStore) Read(ctx context.Context, key string) (string, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.prefix+key, minio.GetObjectOptions{})
	if err != nil {
		return "", m.translate(err, "get object", key)
	}
	defer func() {
		_ = obj.Close()
	}()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", m.translate(err, "read object", key)
	}
	return string(data), nil
}

// translate maps S3 error responses onto error codes.
func (m *MinioStore) translate(err error, op, key string) error {
	code := errors.CodeNetwork
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		code = errors.CodeNotFound
	case "AccessDenied":
		code = errors.CodeForbidden
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		code = errors.CodeUnauthorized
	}
	return errors.WrapWithContext(err, code, op+" failed", map[string]interface{}{
		"bucket": m.bucket,
		"key":    key,
	})
}
