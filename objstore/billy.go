package objstore

import (
	"context"
	"io"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/jmgilman/go/errors"
)

// FilesystemStore reads documents from a go-billy filesystem, typically an
// osfs rooted at a local content directory.
type FilesystemStore struct {
	fs billy.Filesystem
}

// NewFilesystem returns a Store over fs.
func NewFilesystem(fs billy.Filesystem) *FilesystemStore {
	return &FilesystemStore{fs: fs}
}

// List walks the filesystem from its root and returns every document.
func (f *FilesystemStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := f.walk(ctx, ".", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *FilesystemStore) walk(ctx context.Context, dir string, entries *[]Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	infos, err := f.fs.ReadDir(dir)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "read dir failed"), "dir", dir)
	}
	for _, info := range infos {
		name := path.Join(dir, info.Name())
		if info.IsDir() {
			if err := f.walk(ctx, name, entries); err != nil {
				return err
			}
			continue
		}
		if IsDocument(name) {
			*entries = append(*entries, Entry{Key: name, LastModified: info.ModTime()})
		}
	}
	return nil
}

// Read returns the contents of the document at key.
func (f *FilesystemStore) Read(_ context.Context, key string) (string, error) {
	file, err := f.fs.Open(key)
	if err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.CodeNotFound, "open failed"), "key", key)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.WithContext(errors.Wrap(err, errors.CodeInternal, "read failed"), "key", key)
	}
	return string(data), nil
}
