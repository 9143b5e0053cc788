// internal/services/raw_image_service_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivoa/catalog-backend/internal/models"
)

type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: make(map[string][]byte)}
}

func (s *memoryBlobStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (s *memoryBlobStore) Delete(ctx context.Context, keyOrURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, keyOrURL)
	return nil
}

func TestUploadRawImage(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryBlobStore()
	service := NewRawImageService(db, store)

	raw, err := service.UploadRawImage(context.Background(), []byte("jpeg bytes"), "necklace.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw.ImageURL, "https://cdn.test/raw-images/"))
	assert.True(t, strings.HasSuffix(raw.ImageURL, ".jpg"))
	assert.Equal(t, "necklace.jpg", raw.Filename)

	images, err := service.ListRawImages()
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestUploadRawImageRejectsUnsupportedType(t *testing.T) {
	db := newTestDB(t)
	service := NewRawImageService(db, newMemoryBlobStore())

	_, err := service.UploadRawImage(context.Background(), []byte("gif"), "animation.gif", "image/gif")
	assert.Error(t, err)

	_, err = service.UploadRawImage(context.Background(), nil, "empty.jpg", "image/jpeg")
	assert.Error(t, err)
}

func TestDeleteRawImageRemovesObjectAndRow(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryBlobStore()
	service := NewRawImageService(db, store)

	raw, err := service.UploadRawImage(context.Background(), []byte("jpeg bytes"), "necklace.jpg", "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, service.DeleteRawImage(context.Background(), raw.ID))
	assert.Equal(t, []string{raw.ImageURL}, store.deletes)

	var count int64
	db.Model(&models.RawImage{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
