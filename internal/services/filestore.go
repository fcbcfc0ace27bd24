package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const StorageLocal = "local"

// StoredFile locates bytes kept by a FileStore.
type StoredFile struct {
	Key     string
	URL     string
	Storage string
}

// FileStore keeps uploaded bytes.
type FileStore interface {
	Name() string
	Save(ctx context.Context, fileName, contentType string, r io.Reader) (StoredFile, error)
	Delete(ctx context.Context, key string) error
}

// LocalFileStore writes uploads under dir and serves them from urlPrefix.
type LocalFileStore struct {
	dir       string
	urlPrefix string
}

func NewLocalFileStore(dir, urlPrefix string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalFileStore) Name() string { return StorageLocal }

// Dir is the directory served under the URL prefix.
func (s *LocalFileStore) Dir() string { return s.dir }

func (s *LocalFileStore) Save(_ context.Context, fileName, _ string, r io.Reader) (StoredFile, error) {
	key := uuid.NewString() + safeExt(fileName)
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return StoredFile{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return StoredFile{}, err
	}
	return StoredFile{Key: key, URL: s.urlPrefix + "/" + key, Storage: StorageLocal}, nil
}

// Open returns the stored file for streaming.
func (s *LocalFileStore) Open(key string) (*os.File, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalFileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalFileStore) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

// safeExt keeps a short alphanumeric extension of the uploaded name.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
