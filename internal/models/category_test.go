// internal/models/category_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSKU(t *testing.T) {
	category := Category{Name: "Necklaces", Prefix: "NECK"}

	assert.Equal(t, "NECK-0001-0124", category.FormatSKU(1, "0124"))
	assert.Equal(t, "NECK-0042-1223", category.FormatSKU(42, "1223"))
	assert.Equal(t, "NECK-10000-0124", category.FormatSKU(10000, "0124"))
}
