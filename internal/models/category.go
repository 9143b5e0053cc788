// internal/models/category.go
package models

import "fmt"

// Category groups products and owns the per-category SKU sequence.
// SKUSequenceNumber only ever increases and is mutated exclusively by the
// allocator, inside the same transaction as the product insert consuming it.
type Category struct {
	BaseModel
	Name              string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Prefix            string `json:"prefix" gorm:"size:10;not null;uniqueIndex"`
	SKUSequenceNumber int    `json:"sku_sequence_number" gorm:"not null;default:0"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
	Prompts  []Prompt  `json:"prompts,omitempty" gorm:"foreignKey:CategoryID"`
}

// FormatSKU renders a SKU for this category in the form
// PREFIX-0001-0124, where 0124 is the MMYY purchase month.
func (c *Category) FormatSKU(sequence int, purchaseMonth string) string {
	return fmt.Sprintf("%s-%04d-%s", c.Prefix, sequence, purchaseMonth)
}
