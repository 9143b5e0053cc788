// internal/models/prompt.go
package models

import "github.com/google/uuid"

// Prompt is an AI transformation prompt scoped to a category.
// At most one prompt per category is marked as the default; setting a new
// default clears the previous one in the same transaction.
type Prompt struct {
	BaseModel
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Type       string    `json:"type" gorm:"size:100"`
	Tags       string    `json:"tags" gorm:"size:500"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	IsDefault  bool      `json:"is_default" gorm:"default:false"`

	// Relationships
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
