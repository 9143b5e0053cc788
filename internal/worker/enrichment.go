// internal/worker/enrichment.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/imaging"
	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/queue"
	"github.com/kivoa/catalog-backend/internal/services"
)

// ImageStore is the storage surface the enrichment pipeline needs.
type ImageStore interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// Generator is the AI surface the pipeline needs; GeminiService satisfies
// it, tests substitute fakes.
type Generator interface {
	GenerateImage(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error)
	GenerateListing(ctx context.Context, image []byte, mimeType string) (services.GeneratedListing, error)
}

// EnrichmentWorker turns a pending product's source photo into its review
// candidate: generated (or directly copied) images plus an AI-written
// title and description. Rerunning a message replaces prior output rather
// than appending to it.
type EnrichmentWorker struct {
	db           *gorm.DB
	queue        queue.Queue
	store        ImageStore
	generator    Generator
	imagesCount  int
	maxDimension int
}

func NewEnrichmentWorker(db *gorm.DB, q queue.Queue, store ImageStore, generator Generator, imagesCount, maxDimension int) *EnrichmentWorker {
	return &EnrichmentWorker{
		db:           db,
		queue:        q,
		store:        store,
		generator:    generator,
		imagesCount:  imagesCount,
		maxDimension: maxDimension,
	}
}

func (w *EnrichmentWorker) Name() string { return "enrichment" }

func (w *EnrichmentWorker) Queue() queue.Queue { return w.queue }

func (w *EnrichmentWorker) Handle(ctx context.Context, msg queue.Message) Result {
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
	if err := w.db.Preload("Category").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Permanent(fmt.Errorf("product %s not found", productID))
		}
		return Transient(fmt.Errorf("failed to load product: %w", err))
	}

	// A late duplicate must not clobber a reviewed product.
	if product.Status != models.ProductStatusPending && product.Status != models.ProductStatusPendingReview {
		log.WithField("status", product.Status).Info("Product already reviewed, skipping enrichment")
		return Processed()
	}

	source, err := w.store.Fetch(ctx, product.SourceImageURL)
	if err != nil {
		if errors.Is(err, services.ErrObjectNotFound) {
			return Permanent(fmt.Errorf("source image %s is gone: %w", product.SourceImageURL, err))
		}
		return Transient(fmt.Errorf("failed to fetch source image: %w", err))
	}

	normalized, mimeType, err := imaging.Normalize(source, w.maxDimension)
	if err != nil {
		return Permanent(fmt.Errorf("source image is not decodable: %w", err))
	}

	title, description := w.generateListing(ctx, normalized, mimeType, product.SKU, log)

	var images []models.ProductImage
	if env.IsRawImage {
		images, err = w.generateImages(ctx, &product, env.PromptID, normalized, mimeType)
	} else {
		images, err = w.copySourceImage(ctx, &product, normalized)
	}
	if err != nil {
		var pErr promptErr
		if errors.As(err, &pErr) {
			return Permanent(err)
		}
		return Transient(err)
	}

	err = w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous images: %w", err)
		}
		for i := range images {
			if err := tx.Create(&images[i]).Error; err != nil {
				return fmt.Errorf("failed to record image: %w", err)
			}
		}
		updates := map[string]interface{}{
			"title":          title,
			"description":    description,
			"shopify_handle": handleFor(title, product.SKU),
			"status":         models.ProductStatusPendingReview,
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return Transient(err)
	}

	log.WithField("images", len(images)).Info("Product enriched")
	return Processed()
}

// generateListing degrades gracefully: a text failure must not block the
// image pipeline, so the product falls back to its SKU as a title.
func (w *EnrichmentWorker) generateListing(ctx context.Context, image []byte, mimeType, sku string, log *logrus.Entry) (string, string) {
	listing, err := w.generator.GenerateListing(ctx, image, mimeType)
	if err != nil {
		log.WithError(err).Warn("Listing generation failed, using placeholder")
		return sku, ""
	}
	return listing.Title, listing.Description
}

// generateImages runs the source photo through the model once per desired
// image. Keys are deterministic per product and slot, so a retried message
// overwrites rather than accumulates objects.
func (w *EnrichmentWorker) generateImages(ctx context.Context, product *models.Product, explicitPromptID string, source []byte, mimeType string) ([]models.ProductImage, error) {
	prompt, err := w.selectPrompt(explicitPromptID, product.CategoryID)
	if err != nil {
		return nil, err
	}

	images := make([]models.ProductImage, 0, w.imagesCount)
	for i := 1; i <= w.imagesCount; i++ {
		generated, err := w.generator.GenerateImage(ctx, source, mimeType, prompt.Text)
		if err != nil {
			return nil, fmt.Errorf("image %d generation failed: %w", i, err)
		}

		// The model's output format is not guaranteed; re-encode to JPEG.
		encoded, outMime, err := imaging.Normalize(generated, w.maxDimension)
		if err != nil {
			return nil, fmt.Errorf("image %d is not decodable: %w", i, err)
		}

		key := fmt.Sprintf("product-images/%s-%02d.jpg", product.SKU, i)
		url, err := w.store.Upload(ctx, encoded, key, outMime)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d: %w", i, err)
		}

		promptID := prompt.ID
		images = append(images, models.ProductImage{
			ProductID: product.ID,
			ImageURL:  url,
			Status:    models.ImageStatusPending,
			Priority:  i,
			PromptID:  &promptID,
		})
	}
	return images, nil
}

// copySourceImage is the direct-copy path for already-final photos: one
// image, pre-approved, no prompt.
func (w *EnrichmentWorker) copySourceImage(ctx context.Context, product *models.Product, normalized []byte) ([]models.ProductImage, error) {
	key := fmt.Sprintf("product-images/%s-01.jpg", product.SKU)
	url, err := w.store.Upload(ctx, normalized, key, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return []models.ProductImage{{
		ProductID: product.ID,
		ImageURL:  url,
		Status:    models.ImageStatusApproved,
		Priority:  1,
	}}, nil
}

type promptErr struct{ err error }

func (e promptErr) Error() string { return e.err.Error() }
func (e promptErr) Unwrap() error { return e.err }

// selectPrompt resolves the generation prompt in a fixed order: the
// message's explicit prompt id, then the category default, then a random
// active prompt for the category.
func (w *EnrichmentWorker) selectPrompt(explicitID string, categoryID uuid.UUID) (*models.Prompt, error) {
	if explicitID != "" {
		if id, err := uuid.Parse(explicitID); err == nil {
			var prompt models.Prompt
			err := w.db.First(&prompt, "id = ?", id).Error
			if err == nil {
				return &prompt, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to load prompt: %w", err)
			}
		}
		logrus.WithField("prompt_id", explicitID).Warn("Requested prompt not found, falling back")
	}

	var prompt models.Prompt
	err := w.db.Where("category_id = ? AND is_default = ? AND is_active = ?", categoryID, true, true).
		First(&prompt).Error
	if err == nil {
		return &prompt, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load default prompt: %w", err)
	}

	var active []models.Prompt
	if err := w.db.Where("category_id = ? AND is_active = ?", categoryID, true).Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	if len(active) == 0 {
		return nil, promptErr{fmt.Errorf("no active prompts for category %s", categoryID)}
	}
	return &active[rand.Intn(len(active))], nil
}

var handleCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// handleFor builds a URL slug from the title, suffixed with the SKU for
// uniqueness.
func handleFor(title, sku string) string {
	slug := handleCleaner.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	skuSlug := strings.Trim(handleCleaner.ReplaceAllString(strings.ToLower(sku), "-"), "-")
	if slug == "" {
		return skuSlug
	}
	return slug + "-" + skuSlug
}
