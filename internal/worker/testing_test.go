// internal/worker/testing_test.go
package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every pool connection to :memory: gets its own database; keep one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Prompt{},
		&models.RawImage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// fakeStore is an in-memory ImageStore keyed by ref/key.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[ref]
	if !ok {
		return nil, services.ErrObjectNotFound
	}
	return data, nil
}

func (s *fakeStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.uploads = append(s.uploads, key)
	return "https://cdn.test/" + key, nil
}

// fakeGenerator returns canned output and records the prompts it was
// called with.
type fakeGenerator struct {
	mu          sync.Mutex
	image       []byte
	listing     services.GeneratedListing
	imageErr    error
	listingErr  error
	promptsUsed []string
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error) {
	g.mu.Lock()
	g.promptsUsed = append(g.promptsUsed, prompt)
	g.mu.Unlock()
	if g.imageErr != nil {
		return nil, g.imageErr
	}
	return g.image, nil
}

func (g *fakeGenerator) GenerateListing(ctx context.Context, image []byte, mimeType string) (services.GeneratedListing, error) {
	if g.listingErr != nil {
		return services.GeneratedListing{}, g.listingErr
	}
	return g.listing, nil
}

// fakeCatalog records storefront calls.
type fakeCatalog struct {
	mu       sync.Mutex
	remote   *services.RemoteProduct
	findErr  error
	creates  []services.Listing
	updates  []services.Listing
	updateID int64
}

func (c *fakeCatalog) FindBySKU(ctx context.Context, sku string) (*services.RemoteProduct, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	return c.remote, nil
}

func (c *fakeCatalog) Create(ctx context.Context, listing services.Listing) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates = append(c.creates, listing)
	return 9001, nil
}

func (c *fakeCatalog) Update(ctx context.Context, remoteID int64, listing services.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateID = remoteID
	c.updates = append(c.updates, listing)
	return nil
}

func mustSeedProduct(t *testing.T, db *gorm.DB, category *models.Category, status models.ProductStatus) *models.Product {
	t.Helper()

	var count int64
	db.Model(&models.Product{}).Count(&count)

	product := &models.Product{
		CategoryID:     category.ID,
		SKU:            fmt.Sprintf("%s-%04d-0124", category.Prefix, count+1),
		SequenceNumber: int(count + 1),
		PurchaseMonth:  "0124",
		SourceImageURL: fmt.Sprintf("s3://test-bucket/raw-images/source-%d.jpg", count+1),
		MRP:            2500,
		Price:          1999,
		Discount:       500,
		GST:            3,
		InventoryCount: 5,
		Status:         status,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}
