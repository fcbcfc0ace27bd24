package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const StorageCloudinary = "cloudinary"

// CloudinaryFileStore keeps repository uploads in a Cloudinary folder.
// Keys have the form "<resource_type>:<public_id>" so they can be destroyed later.
type CloudinaryFileStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryFileStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryFileStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryFileStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryFileStore) Name() string { return StorageCloudinary }

func (s *CloudinaryFileStore) Save(ctx context.Context, _, _ string, r io.Reader) (StoredFile, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto", // image, video or raw
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return StoredFile{}, fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return StoredFile{
		Key:     res.ResourceType + ":" + res.PublicID,
		URL:     res.SecureURL,
		Storage: StorageCloudinary,
	}, nil
}

func (s *CloudinaryFileStore) Delete(ctx context.Context, key string) error {
	resourceType, publicID, ok := strings.Cut(key, ":")
	if !ok {
		resourceType, publicID = "raw", key
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: resourceType})
	return err
}
