// internal/models/raw_image.go
package models

// RawImage is an uploaded source photo waiting to become a product.
// The row is removed once a product is created from its URL.
type RawImage struct {
	BaseModel
	ImageURL string `json:"image_url" gorm:"size:500;not null;uniqueIndex"`
	Filename string `json:"filename" gorm:"size:255"`
}
