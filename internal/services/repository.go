package services

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"github.com/zeebo/blake3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadInput is a parsed multipart upload.
type UploadInput struct {
	Title       string
	Description string
	Tags        string // comma-separated
	FileName    string
	ContentType string
	Body        io.Reader
}

type RepositoryService struct {
	store  storage.Repository
	local  *LocalFileStore
	upload FileStore // where new uploads go; local unless Cloudinary is configured
}

// NewRepositoryService stores uploads in remote when non-nil, otherwise on local disk.
func NewRepositoryService(store storage.Repository, local *LocalFileStore, remote FileStore) *RepositoryService {
	s := &RepositoryService{store: store, local: local, upload: local}
	if remote != nil {
		s.upload = remote
	}
	return s
}

func (s *RepositoryService) List(ctx context.Context, query string, page storage.Page) ([]models.RepositoryItem, error) {
	return s.store.ListItems(ctx, query, page)
}

func (s *RepositoryService) Get(ctx context.Context, id string) (*models.RepositoryItem, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.GetItem(ctx, oid)
}

// Upload stores the file bytes, then the metadata record. The BLAKE3 checksum is taken while streaming.
func (s *RepositoryService) Upload(ctx context.Context, actor primitive.ObjectID, in UploadInput) (*models.RepositoryItem, error) {
	if err := utils.Required("title", in.Title); err != nil {
		return nil, err
	}
	if in.Body == nil || strings.TrimSpace(in.FileName) == "" {
		return nil, utils.Invalid("file", "file is required")
	}

	hasher := blake3.New()
	counter := &countingReader{r: io.TeeReader(in.Body, hasher)}
	stored, err := s.upload.Save(ctx, in.FileName, in.ContentType, counter)
	if err != nil {
		return nil, err
	}
	if counter.n == 0 {
		s.removeBytes(ctx, stored.Storage, stored.Key)
		return nil, utils.Invalid("file", "file is empty")
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	item := &models.RepositoryItem{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        utils.SplitTags(in.Tags),
		FileName:    in.FileName,
		FilePath:    stored.Key,
		FileURL:     stored.URL,
		ContentType: contentType,
		Size:        counter.n,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
		Storage:     stored.Storage,
		Owner:       actor,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		s.removeBytes(ctx, stored.Storage, stored.Key)
		return nil, err
	}
	metrics.UploadBytes.WithLabelValues(stored.Storage).Add(float64(counter.n))
	return item, nil
}

// Open returns the item and, for locally stored files, an open handle on its bytes.
// A nil file means the bytes live at item.FileURL.
func (s *RepositoryService) Open(ctx context.Context, id string) (*models.RepositoryItem, *os.File, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if item.Storage != StorageLocal {
		return item, nil, nil
	}
	f, err := s.local.Open(item.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return item, f, nil
}

// Delete removes the record, then makes a best-effort attempt to remove the bytes. Owner only.
func (s *RepositoryService) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}
	item, err := s.store.GetItem(ctx, oid)
	if err != nil {
		return err
	}
	if item.Owner != actor {
		return ErrForbidden
	}
	if _, err := s.store.DeleteItem(ctx, oid); err != nil {
		return err
	}
	s.removeBytes(ctx, item.Storage, item.FilePath)
	return nil
}

func (s *RepositoryService) removeBytes(ctx context.Context, backend, key string) {
	var fs FileStore = s.local
	if backend != StorageLocal {
		if s.upload.Name() != backend {
			slog.Warn("no file store for backend; leaving bytes in place", "storage", backend, "key", key)
			return
		}
		fs = s.upload
	}
	if err := fs.Delete(ctx, key); err != nil {
		slog.Warn("failed to remove stored file", "storage", backend, "key", key, "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
