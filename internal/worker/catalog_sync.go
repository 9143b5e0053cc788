// internal/worker/catalog_sync.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/queue"
	"github.com/kivoa/catalog-backend/internal/services"
)

// CatalogClient is the storefront surface the sync loop needs;
// ShopifyService satisfies it.
type CatalogClient interface {
	FindBySKU(ctx context.Context, sku string) (*services.RemoteProduct, error)
	Create(ctx context.Context, listing services.Listing) (int64, error)
	Update(ctx context.Context, remoteID int64, listing services.Listing) error
}

// CatalogSyncWorker pushes live products to the storefront. The local
// database is the source of truth and the loop never writes back to it;
// a product listed twice converges because the upsert is keyed by SKU.
type CatalogSyncWorker struct {
	db      *gorm.DB
	queue   queue.Queue
	catalog CatalogClient
}

func NewCatalogSyncWorker(db *gorm.DB, q queue.Queue, catalog CatalogClient) *CatalogSyncWorker {
	return &CatalogSyncWorker{db: db, queue: q, catalog: catalog}
}

func (w *CatalogSyncWorker) Name() string { return "catalog-sync" }

func (w *CatalogSyncWorker) Queue() queue.Queue { return w.queue }

func (w *CatalogSyncWorker) Handle(ctx context.Context, msg queue.Message) Result {
	env, err := queue.DecodeEnvelope(msg.Body)
	if err != nil {
		return Permanent(err)
	}

	productID, err := uuid.Parse(env.ProductID)
	if err != nil {
		return Permanent(fmt.Errorf("invalid product id %q: %w", env.ProductID, err))
	}

	log := logrus.WithField("product_id", productID)

	var product models.Product
	err = w.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.ImageStatusApproved).Order("priority asc")
		}).
		First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Permanent(fmt.Errorf("product %s not found", productID))
		}
		return Transient(fmt.Errorf("failed to load product: %w", err))
	}

	// A stale message for a product that moved out of live is acknowledged
	// without touching the storefront.
	if product.Status != models.ProductStatusLive {
		log.WithField("status", product.Status).Info("Product not live, skipping catalog sync")
		return Processed()
	}

	listing := w.toListing(&product)

	remote, err := w.catalog.FindBySKU(ctx, product.SKU)
	if err != nil {
		return Transient(fmt.Errorf("failed to look up listing: %w", err))
	}

	if remote != nil {
		if err := w.catalog.Update(ctx, remote.ID, listing); err != nil {
			return Transient(fmt.Errorf("failed to update listing: %w", err))
		}
		log.WithField("remote_id", remote.ID).Info("Listing updated")
		return Processed()
	}

	remoteID, err := w.catalog.Create(ctx, listing)
	if err != nil {
		return Transient(fmt.Errorf("failed to create listing: %w", err))
	}
	log.WithField("remote_id", remoteID).Info("Listing created")
	return Processed()
}

func (w *CatalogSyncWorker) toListing(product *models.Product) services.Listing {
	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, img.ImageURL)
	}

	title := product.Title
	if title == "" {
		title = fmt.Sprintf("Product %s", product.SKU)
	}

	return services.Listing{
		SKU:               product.SKU,
		Title:             title,
		Description:       product.Description,
		Price:             product.Price,
		InventoryQuantity: product.InventoryCount,
		Weight:            product.Weight,
		Tags:              strings.Join(product.Tags, ", "),
		Images:            images,
	}
}
