// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	CategoryID     uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`
	SKU            string         `json:"sku" gorm:"size:50;not null;uniqueIndex"`
	SequenceNumber int            `json:"sequence_number" gorm:"not null"`
	PurchaseMonth  string         `json:"purchase_month" gorm:"size:4;not null"`
	SourceImageURL string         `json:"source_image_url" gorm:"size:500;not null"`
	Title          string         `json:"title" gorm:"size:255"`
	Description    string         `json:"description" gorm:"type:text"`
	MRP            float64        `json:"mrp" gorm:"type:decimal(10,2);not null"`
	Price          float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Discount       float64        `json:"discount" gorm:"type:decimal(10,2);not null"`
	GST            float64        `json:"gst" gorm:"type:decimal(10,2);not null"`
	Weight         float64        `json:"weight" gorm:"type:decimal(10,2);default:0"`
	InventoryCount int            `json:"inventory_count" gorm:"default:0"`
	Tags           pq.StringArray `json:"tags" gorm:"type:text[]"`
	ShopifyHandle  string         `json:"shopify_handle" gorm:"size:255"`
	Status         ProductStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Category Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images   []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductImage rows are written only by the enrichment pipeline (or its
// direct-copy path) and reviewed explicitly afterwards. Lower priority is
// shown first.
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;index"`
	ImageURL  string      `json:"image_url" gorm:"size:500;not null"`
	Status    ImageStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Priority  int         `json:"priority" gorm:"default:0"`
	PromptID  *uuid.UUID  `json:"prompt_id,omitempty" gorm:"type:uuid"`
}
