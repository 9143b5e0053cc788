// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type skuFields struct {
	Prefix        string `validate:"required,sku_prefix"`
	PurchaseMonth string `validate:"required,purchase_month"`
}

func TestSKUFieldValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(&skuFields{Prefix: "NECK", PurchaseMonth: "0124"}))
	assert.NoError(t, ValidateStruct(&skuFields{Prefix: "ring", PurchaseMonth: "1299"}))

	assert.Error(t, ValidateStruct(&skuFields{Prefix: "N", PurchaseMonth: "0124"}), "prefix too short")
	assert.Error(t, ValidateStruct(&skuFields{Prefix: "NECK1", PurchaseMonth: "0124"}), "prefix must be letters")
	assert.Error(t, ValidateStruct(&skuFields{Prefix: "NECK", PurchaseMonth: "1324"}), "month out of range")
	assert.Error(t, ValidateStruct(&skuFields{Prefix: "NECK", PurchaseMonth: "124"}), "month too short")
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&skuFields{})
	errs := GetValidationErrors(err)
	assert.Len(t, errs, 2)
	assert.Equal(t, "required", errs[0].Tag)
}
