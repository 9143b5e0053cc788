// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/queue"
	"github.com/kivoa/catalog-backend/internal/utils"
)

type ProductService struct {
	db               *gorm.DB
	enrichmentQueue  queue.Queue
	catalogSyncQueue queue.Queue
}

type CreateProductRequest struct {
	Category       string   `json:"category" validate:"required"`
	SourceImageURL string   `json:"source_image_url" validate:"required,url"`
	PurchaseMonth  string   `json:"purchase_month" validate:"required,purchase_month"`
	MRP            float64  `json:"mrp" validate:"required,min=0.01"`
	Price          float64  `json:"price" validate:"required,min=0.01"`
	Discount       float64  `json:"discount" validate:"min=0"`
	GST            float64  `json:"gst" validate:"min=0"`
	Weight         float64  `json:"weight,omitempty" validate:"omitempty,min=0"`
	InventoryCount int      `json:"inventory_count" validate:"min=0"`
	Tags           []string `json:"tags,omitempty"`
	PromptID       string   `json:"prompt_id,omitempty" validate:"omitempty,uuid"`
	IsRawImage     bool     `json:"is_raw_image,omitempty"`
}

type UpdateProductRequest struct {
	Title          string   `json:"title,omitempty" validate:"omitempty,max=255"`
	Description    string   `json:"description,omitempty"`
	MRP            float64  `json:"mrp,omitempty" validate:"omitempty,min=0.01"`
	Price          float64  `json:"price,omitempty" validate:"omitempty,min=0.01"`
	Discount       float64  `json:"discount,omitempty" validate:"omitempty,min=0"`
	GST            float64  `json:"gst,omitempty" validate:"omitempty,min=0"`
	Weight         float64  `json:"weight,omitempty" validate:"omitempty,min=0"`
	InventoryCount *int     `json:"inventory_count,omitempty" validate:"omitempty,min=0"`
	Tags           []string `json:"tags,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Status *models.ProductStatus
}

type BulkCreateError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type BulkCreateResult struct {
	Created   []models.Product  `json:"products"`
	Errors    []BulkCreateError `json:"errors"`
	Total     int               `json:"total"`
	Succeeded int               `json:"created"`
	Failed    int               `json:"failed"`
}

const maxBulkCreate = 100

func NewProductService(db *gorm.DB, enrichmentQueue, catalogSyncQueue queue.Queue) *ProductService {
	return &ProductService{
		db:               db,
		enrichmentQueue:  enrichmentQueue,
		catalogSyncQueue: catalogSyncQueue,
	}
}

// allocateSKU reserves the next sequence number for the category inside tx.
// The atomic increment takes the category row lock, which the transaction
// holds until commit, so two concurrent allocations can never read the same
// counter value. It rolls back with the enclosing transaction; gaps from a
// rollback are fine, duplicates are not.
func (s *ProductService) allocateSKU(tx *gorm.DB, categoryID uuid.UUID, purchaseMonth string) (string, int, error) {
	result := tx.Model(&models.Category{}).
		Where("id = ?", categoryID).
		UpdateColumn("sku_sequence_number", gorm.Expr("sku_sequence_number + 1"))
	if result.Error != nil {
		return "", 0, fmt.Errorf("failed to advance SKU sequence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", 0, errors.New("category not found")
	}

	var category models.Category
	if err := tx.First(&category, "id = ?", categoryID).Error; err != nil {
		return "", 0, fmt.Errorf("failed to reload category: %w", err)
	}

	sequence := category.SKUSequenceNumber
	return category.FormatSKU(sequence, purchaseMonth), sequence, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.Where("name = ?", req.Category).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q not found", req.Category)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var product *models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sku, sequence, err := s.allocateSKU(tx, category.ID, req.PurchaseMonth)
		if err != nil {
			return err
		}

		product = &models.Product{
			CategoryID:     category.ID,
			SKU:            sku,
			SequenceNumber: sequence,
			PurchaseMonth:  req.PurchaseMonth,
			SourceImageURL: req.SourceImageURL,
			MRP:            req.MRP,
			Price:          req.Price,
			Discount:       req.Discount,
			GST:            req.GST,
			Weight:         req.Weight,
			InventoryCount: req.InventoryCount,
			Tags:           req.Tags,
			Status:         models.ProductStatusPending,
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		// Consume the raw-image row the product was created from, if any.
		if err := tx.Where("image_url = ?", req.SourceImageURL).
			Delete(&models.RawImage{}).Error; err != nil {
			return fmt.Errorf("failed to consume raw image: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueEnrichment(ctx, product.ID, req.PromptID, req.IsRawImage)

	product.Category = category
	return product, nil
}

// BulkCreateProducts creates up to 100 products, each in its own
// transaction so one bad row does not sink the batch. The allocator keeps
// sequence numbers unique across the concurrent creates.
func (s *ProductService) BulkCreateProducts(ctx context.Context, reqs []CreateProductRequest) (*BulkCreateResult, error) {
	if len(reqs) == 0 {
		return nil, errors.New("products array cannot be empty")
	}
	if len(reqs) > maxBulkCreate {
		return nil, fmt.Errorf("maximum %d products allowed per bulk upload", maxBulkCreate)
	}

	result := &BulkCreateResult{Total: len(reqs)}
	for i := range reqs {
		product, err := s.CreateProduct(ctx, &reqs[i])
		if err != nil {
			result.Errors = append(result.Errors, BulkCreateError{Index: i, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, *product)
	}

	result.Succeeded = len(result.Created)
	result.Failed = len(result.Errors)
	return result, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority asc")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category").Preload("Images")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(sku) LIKE ? OR LOWER(title) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "sku", "price", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.MRP > 0 {
		updates["mrp"] = req.MRP
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.Discount > 0 {
		updates["discount"] = req.Discount
	}
	if req.GST > 0 {
		updates["gst"] = req.GST
	}
	if req.Weight > 0 {
		updates["weight"] = req.Weight
	}
	if req.InventoryCount != nil {
		updates["inventory_count"] = *req.InventoryCount
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	// A live listing must be re-synced so the storefront reflects the edit.
	if product.Status == models.ProductStatusLive {
		s.enqueueCatalogSync(ctx, product.ID, "update")
	}

	s.db.Preload("Category").Preload("Images").First(&product, "id = ?", id)
	return &product, nil
}

// ApproveProduct moves a reviewed product live and queues the storefront
// sync. Status changes happen only through this operation, never by
// writing the column directly.
func (s *ProductService) ApproveProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.transitionProduct(id, models.ProductStatusPendingReview, models.ProductStatusLive)
	if err != nil {
		return nil, err
	}

	s.enqueueCatalogSync(ctx, product.ID, "create")
	return product, nil
}

func (s *ProductService) RejectProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.transitionProduct(id, models.ProductStatusPendingReview, models.ProductStatusRejected)
}

func (s *ProductService) transitionProduct(id uuid.UUID, from, to models.ProductStatus) (*models.Product, error) {
	var product models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("product not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.Status != from {
			return fmt.Errorf("product is %s, expected %s", product.Status, from)
		}

		if err := tx.Model(&product).Update("status", to).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// Reenrich queues another enrichment run, e.g. after a prompt change.
func (s *ProductService) Reenrich(ctx context.Context, id uuid.UUID, promptID string, isRawImage bool) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	body, err := queue.Envelope{
		ProductID:  id.String(),
		PromptID:   promptID,
		IsRawImage: isRawImage,
	}.Encode()
	if err != nil {
		return err
	}
	if err := s.enrichmentQueue.Send(ctx, body); err != nil {
		return fmt.Errorf("failed to enqueue enrichment: %w", err)
	}
	return nil
}

// ApproveImage and RejectImage are the only paths out of an image's
// pending state; the pipeline never auto-approves AI output.
func (s *ProductService) ApproveImage(imageID uuid.UUID) (*models.ProductImage, error) {
	return s.transitionImage(imageID, models.ImageStatusApproved)
}

func (s *ProductService) RejectImage(imageID uuid.UUID) (*models.ProductImage, error) {
	return s.transitionImage(imageID, models.ImageStatusRejected)
}

func (s *ProductService) transitionImage(imageID uuid.UUID, to models.ImageStatus) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := s.db.First(&img, "id = ?", imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product image not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if img.Status != models.ImageStatusPending {
		return nil, fmt.Errorf("image is %s, expected %s", img.Status, models.ImageStatusPending)
	}

	if err := s.db.Model(&img).Update("status", to).Error; err != nil {
		return nil, fmt.Errorf("failed to update image status: %w", err)
	}
	return &img, nil
}

func (s *ProductService) enqueueEnrichment(ctx context.Context, productID uuid.UUID, promptID string, isRawImage bool) {
	body, err := queue.Envelope{
		ProductID:  productID.String(),
		PromptID:   promptID,
		IsRawImage: isRawImage,
	}.Encode()
	if err == nil {
		err = s.enrichmentQueue.Send(ctx, body)
	}
	if err != nil {
		// The product stays pending; operators can re-enqueue via Reenrich.
		logrus.WithError(err).WithField("product_id", productID).
			Warn("Failed to enqueue enrichment message")
	}
}

func (s *ProductService) enqueueCatalogSync(ctx context.Context, productID uuid.UUID, action string) {
	body, err := queue.Envelope{
		ProductID: productID.String(),
		Action:    action,
	}.Encode()
	if err == nil {
		err = s.catalogSyncQueue.Send(ctx, body)
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"product_id": productID,
			"action":     action,
		}).Warn("Failed to enqueue catalog sync message")
	}
}
