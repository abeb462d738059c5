package vectorstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"

	"ragrouter/src/fsutil"
)

const documentExt = ".txt"

// DocumentSource lists and reads the plain text documents of a domain folder.
type DocumentSource interface {
	Load(ctx context.Context, dir string) ([]schema.Document, error)
	Name() string
}

// LocalSource reads documents from a directory tree.
type LocalSource struct {
	fs   fsutil.FileStore
	root string
}

func NewLocalSource(fs fsutil.FileStore, root string) *LocalSource {
	return &LocalSource{fs: fs, root: root}
}

func (s *LocalSource) Name() string {
	return "local"
}

func (s *LocalSource) Load(ctx context.Context, dir string) ([]schema.Document, error) {
	full := filepath.Join(s.root, dir)
	files, err := s.fs.ListFiles(full, documentExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", full, err)
	}

	var docs []schema.Document
	for _, f := range files {
		rc, err := s.fs.ReadFileAsStream(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f, err)
		}
		loaded, err := loadText(ctx, rc, f, filepath.Base(f))
		rc.Close()
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

// ObjectStore is the part of minioctrl.MinioService a MinioSource needs.
type ObjectStore interface {
	ListObjects(ctx context.Context, bucketName, prefix, suffix string) ([]string, error)
	OpenObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)
}

// MinioSource reads documents stored under "<dir>/" in a bucket.
type MinioSource struct {
	store  ObjectStore
	bucket string
}

func NewMinioSource(store ObjectStore, bucket string) *MinioSource {
	return &MinioSource{store: store, bucket: bucket}
}

func (s *MinioSource) Name() string {
	return "minio"
}

func (s *MinioSource) Load(ctx context.Context, dir string) ([]schema.Document, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	keys, err := s.store.ListObjects(ctx, s.bucket, prefix, documentExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s/%s: %w", s.bucket, prefix, err)
	}

	var docs []schema.Document
	for _, key := range keys {
		rc, err := s.store.OpenObject(ctx, s.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", key, err)
		}
		loaded, err := loadText(ctx, rc, s.bucket+"/"+key, path.Base(key))
		rc.Close()
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

func loadText(ctx context.Context, r io.Reader, source, filename string) ([]schema.Document, error) {
	docs, err := documentloaders.NewText(r).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]any{}
		}
		docs[i].Metadata["source"] = source
		docs[i].Metadata["filename"] = filename
	}
	return docs, nil
}
