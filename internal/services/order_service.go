// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/utils"
)

type OrderService struct {
	db      *gorm.DB
	catalog *ShopifyService
}

type CreateOrderRequest struct {
	SKU             string  `json:"sku" validate:"required"`
	Quantity        int     `json:"quantity" validate:"required,min=1"`
	ShippingCharges float64 `json:"shipping_charges" validate:"min=0"`
	CustomerName    string  `json:"customer_name" validate:"required"`
	CustomerPhone   string  `json:"customer_phone" validate:"required"`
	Address1        string  `json:"address1" validate:"required"`
	City            string  `json:"city" validate:"required"`
	Province        string  `json:"province" validate:"required"`
	Country         string  `json:"country" validate:"required"`
	Zip             string  `json:"zip" validate:"required"`
}

func NewOrderService(db *gorm.DB, catalog *ShopifyService) *OrderService {
	return &OrderService{db: db, catalog: catalog}
}

// CreateOrder places a completed draft order on the storefront for a live
// product. It orchestrates the remote platform only; local rows stay
// untouched.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (int64, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Where("sku = ?", req.SKU).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("product with SKU %q not found", req.SKU)
		}
		return 0, fmt.Errorf("database error: %w", err)
	}

	if product.Status != models.ProductStatusLive {
		return 0, fmt.Errorf("product %s is not live", req.SKU)
	}
	if product.InventoryCount < req.Quantity {
		return 0, errors.New("insufficient inventory")
	}

	title := product.Title
	if title == "" {
		title = fmt.Sprintf("Product %s", product.SKU)
	}

	orderID, err := s.catalog.CreateDraftOrder(ctx, DraftOrderRequest{
		SKU:             product.SKU,
		Title:           title,
		Quantity:        req.Quantity,
		PerUnitPrice:    product.Price,
		ShippingCharges: req.ShippingCharges,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Address1:        req.Address1,
		City:            req.City,
		Province:        req.Province,
		Country:         req.Country,
		Zip:             req.Zip,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return orderID, nil
}
