// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the UUID client-side so inserts behave the same on
// Postgres and the SQLite databases used in tests.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type ProductStatus string

const (
	ProductStatusPending       ProductStatus = "pending"
	ProductStatusPendingReview ProductStatus = "pending_review"
	ProductStatusLive          ProductStatus = "live"
	ProductStatusRejected      ProductStatus = "rejected"
)

type ImageStatus string

const (
	ImageStatusPending  ImageStatus = "pending"
	ImageStatusApproved ImageStatus = "approved"
	ImageStatusRejected ImageStatus = "rejected"
)
