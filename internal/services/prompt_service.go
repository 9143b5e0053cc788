// internal/services/prompt_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
	"github.com/kivoa/catalog-backend/internal/utils"
)

type PromptService struct {
	db *gorm.DB
}

type CreatePromptRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Text       string `json:"text" validate:"required"`
	Type       string `json:"type,omitempty" validate:"omitempty,max=100"`
	Tags       string `json:"tags,omitempty" validate:"omitempty,max=500"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

type UpdatePromptRequest struct {
	Text     string `json:"text,omitempty"`
	Type     string `json:"type,omitempty" validate:"omitempty,max=100"`
	Tags     string `json:"tags,omitempty" validate:"omitempty,max=500"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

func (s *PromptService) CreatePrompt(req *CreatePromptRequest) (*models.Prompt, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	prompt := &models.Prompt{
		CategoryID: categoryID,
		Text:       req.Text,
		Type:       req.Type,
		Tags:       req.Tags,
		IsActive:   true,
		IsDefault:  req.IsDefault,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefaultPrompt(tx, categoryID); err != nil {
				return err
			}
		}
		if err := tx.Create(prompt).Error; err != nil {
			return fmt.Errorf("failed to create prompt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) GetPrompt(id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.Preload("Category").First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("prompt not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &prompt, nil
}

func (s *PromptService) ListPrompts(categoryID *uuid.UUID, activeOnly bool) ([]models.Prompt, error) {
	query := s.db.Model(&models.Prompt{}).Preload("Category")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var prompts []models.Prompt
	if err := query.Order("created_at desc").Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch prompts: %w", err)
	}
	return prompts, nil
}

func (s *PromptService) UpdatePrompt(id uuid.UUID, req *UpdatePromptRequest) (*models.Prompt, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var prompt models.Prompt
	if err := s.db.First(&prompt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("prompt not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Text != "" {
		updates["text"] = req.Text
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Tags != "" {
		updates["tags"] = req.Tags
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&prompt).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update prompt: %w", err)
		}
	}
	return &prompt, nil
}

// SetDefaultPrompt marks one prompt as its category's default. The previous
// default is cleared in the same transaction, keeping at most one per
// category.
func (s *PromptService) SetDefaultPrompt(id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prompt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("prompt not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := clearDefaultPrompt(tx, prompt.CategoryID); err != nil {
			return err
		}

		if err := tx.Model(&prompt).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default prompt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *PromptService) DeletePrompt(id uuid.UUID) error {
	result := s.db.Delete(&models.Prompt{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete prompt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("prompt not found")
	}
	return nil
}

func clearDefaultPrompt(tx *gorm.DB, categoryID uuid.UUID) error {
	err := tx.Model(&models.Prompt{}).
		Where("category_id = ? AND is_default = ?", categoryID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear previous default prompt: %w", err)
	}
	return nil
}
