// internal/services/raw_image_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
)

// BlobStore is the narrow storage contract this service needs; the S3
// StorageService satisfies it, tests use an in-memory fake.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, keyOrURL string) error
}

type RawImageService struct {
	db    *gorm.DB
	store BlobStore
}

func NewRawImageService(db *gorm.DB, store BlobStore) *RawImageService {
	return &RawImageService{db: db, store: store}
}

// UploadRawImage stores a source photo under raw-images/ and records it as
// awaiting product creation.
func (s *RawImageService) UploadRawImage(ctx context.Context, data []byte, filename, contentType string) (*models.RawImage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, fmt.Errorf("file type %s is not allowed", ext)
	}

	key := fmt.Sprintf("raw-images/%s%s", uuid.New().String(), ext)
	url, err := s.store.Upload(ctx, data, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload raw image: %w", err)
	}

	rawImage := &models.RawImage{ImageURL: url, Filename: filename}
	if err := s.db.Create(rawImage).Error; err != nil {
		return nil, fmt.Errorf("failed to record raw image: %w", err)
	}
	return rawImage, nil
}

// ListRawImages returns photos not yet consumed by a product.
func (s *RawImageService) ListRawImages() ([]models.RawImage, error) {
	var images []models.RawImage
	if err := s.db.Order("created_at desc").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch raw images: %w", err)
	}
	return images, nil
}

func (s *RawImageService) DeleteRawImage(ctx context.Context, id uuid.UUID) error {
	var rawImage models.RawImage
	if err := s.db.First(&rawImage, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("raw image not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.store.Delete(ctx, rawImage.ImageURL); err != nil {
		return fmt.Errorf("failed to delete stored object: %w", err)
	}

	if err := s.db.Delete(&rawImage).Error; err != nil {
		return fmt.Errorf("failed to delete raw image: %w", err)
	}
	return nil
}
