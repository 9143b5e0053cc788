// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("sku_prefix", validateSKUPrefix)
	validate.RegisterValidation("purchase_month", validatePurchaseMonth)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

var skuPrefixPattern = regexp.MustCompile(`^[A-Za-z]{2,10}$`)

func validateSKUPrefix(fl validator.FieldLevel) bool {
	return skuPrefixPattern.MatchString(fl.Field().String())
}

var purchaseMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])\d{2}$`)

// Purchase month is MMYY, e.g. 0124 for January 2024.
func validatePurchaseMonth(fl validator.FieldLevel) bool {
	return purchaseMonthPattern.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "sku_prefix":
		return "Prefix must be 2-10 letters"
	case "purchase_month":
		return "Purchase month must be in MMYY format"
	default:
		return e.Field() + " is invalid"
	}
}
