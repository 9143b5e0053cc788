// internal/services/category_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivoa/catalog-backend/internal/models"
)

func TestCreateCategoryUppercasesPrefix(t *testing.T) {
	db := newTestDB(t)
	service := NewCategoryService(db)

	category, err := service.CreateCategory(&CreateCategoryRequest{Name: "Necklaces", Prefix: "neck"})
	require.NoError(t, err)
	assert.Equal(t, "NECK", category.Prefix)
	assert.Equal(t, 0, category.SKUSequenceNumber)
}

func TestCreateCategoryRejectsInvalidPrefix(t *testing.T) {
	db := newTestDB(t)
	service := NewCategoryService(db)

	for _, prefix := range []string{"1234", "N", "NECKLACES99", "NE CK", ""} {
		_, err := service.CreateCategory(&CreateCategoryRequest{Name: "Necklaces", Prefix: prefix})
		assert.Error(t, err, "prefix %q should be rejected", prefix)
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateCategoryRejectsDuplicatePrefix(t *testing.T) {
	db := newTestDB(t)
	service := NewCategoryService(db)

	_, err := service.CreateCategory(&CreateCategoryRequest{Name: "Necklaces", Prefix: "NECK"})
	require.NoError(t, err)

	_, err = service.CreateCategory(&CreateCategoryRequest{Name: "Neckwear", Prefix: "NECK"})
	assert.Error(t, err)
}

func TestDeleteCategoryWithProductsRefused(t *testing.T) {
	db := newTestDB(t)
	service := NewCategoryService(db)

	category, err := service.CreateCategory(&CreateCategoryRequest{Name: "Rings", Prefix: "RING"})
	require.NoError(t, err)

	product := &models.Product{
		CategoryID:     category.ID,
		SKU:            "RING-0001-0124",
		SequenceNumber: 1,
		PurchaseMonth:  "0124",
		SourceImageURL: "https://cdn.example.com/raw.jpg",
		MRP:            100,
		Price:          90,
		Status:         models.ProductStatusPending,
	}
	require.NoError(t, db.Create(product).Error)

	err = service.DeleteCategory(category.ID)
	assert.Error(t, err)

	require.NoError(t, db.Delete(product).Error)
	assert.NoError(t, service.DeleteCategory(category.ID))
}
