// internal/services/order_service_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivoa/catalog-backend/internal/models"
)

func validOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		SKU:           "NECK-0001-0124",
		Quantity:      1,
		CustomerName:  "Asha Patel",
		CustomerPhone: "+919800000000",
		Address1:      "1 Marine Drive",
		City:          "Mumbai",
		Province:      "MH",
		Country:       "India",
		Zip:           "400001",
	}
}

func TestCreateOrderForLiveProduct(t *testing.T) {
	db := newTestDB(t)

	catalog, _ := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"draft_order": map[string]interface{}{"id": 4242},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{})
	})
	service := NewOrderService(db, catalog)

	category := &models.Category{Name: "Necklaces", Prefix: "NECK"}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{
		CategoryID:     category.ID,
		SKU:            "NECK-0001-0124",
		SequenceNumber: 1,
		PurchaseMonth:  "0124",
		SourceImageURL: "https://cdn.test/raw.jpg",
		MRP:            2500,
		Price:          1999,
		InventoryCount: 3,
		Status:         models.ProductStatusLive,
	}
	require.NoError(t, db.Create(product).Error)

	orderID, err := service.CreateOrder(context.Background(), validOrderRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(4242), orderID)
}

func TestCreateOrderRejectsNonLiveProduct(t *testing.T) {
	db := newTestDB(t)
	catalog, _ := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no storefront call expected")
	})
	service := NewOrderService(db, catalog)

	category := &models.Category{Name: "Necklaces", Prefix: "NECK"}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{
		CategoryID:     category.ID,
		SKU:            "NECK-0001-0124",
		SequenceNumber: 1,
		PurchaseMonth:  "0124",
		SourceImageURL: "https://cdn.test/raw.jpg",
		MRP:            2500,
		Price:          1999,
		InventoryCount: 3,
		Status:         models.ProductStatusPendingReview,
	}
	require.NoError(t, db.Create(product).Error)

	_, err := service.CreateOrder(context.Background(), validOrderRequest())
	assert.Error(t, err)
}

func TestCreateOrderRejectsInsufficientInventory(t *testing.T) {
	db := newTestDB(t)
	catalog, _ := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no storefront call expected")
	})
	service := NewOrderService(db, catalog)

	category := &models.Category{Name: "Necklaces", Prefix: "NECK"}
	require.NoError(t, db.Create(category).Error)
	product := &models.Product{
		CategoryID:     category.ID,
		SKU:            "NECK-0001-0124",
		SequenceNumber: 1,
		PurchaseMonth:  "0124",
		SourceImageURL: "https://cdn.test/raw.jpg",
		MRP:            2500,
		Price:          1999,
		InventoryCount: 1,
		Status:         models.ProductStatusLive,
	}
	require.NoError(t, db.Create(product).Error)

	req := validOrderRequest()
	req.Quantity = 5
	_, err := service.CreateOrder(context.Background(), req)
	assert.Error(t, err)
}

func TestCreateOrderUnknownSKU(t *testing.T) {
	db := newTestDB(t)
	catalog, _ := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no storefront call expected")
	})
	service := NewOrderService(db, catalog)

	_, err := service.CreateOrder(context.Background(), validOrderRequest())
	assert.Error(t, err)
}
