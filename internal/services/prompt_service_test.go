// internal/services/prompt_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kivoa/catalog-backend/internal/models"
)

type PromptServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *PromptService
	category *models.Category
}

func (suite *PromptServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewPromptService(suite.db)

	suite.category = &models.Category{Name: "Earrings", Prefix: "EARR"}
	suite.Require().NoError(suite.db.Create(suite.category).Error)
}

func (suite *PromptServiceTestSuite) TestCreatePrompt() {
	prompt, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "soft window light, white backdrop",
	})
	suite.Require().NoError(err)
	suite.True(prompt.IsActive)
	suite.False(prompt.IsDefault)
}

func (suite *PromptServiceTestSuite) TestCreatePromptUnknownCategory() {
	_, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		Text:       "whatever",
	})
	suite.Error(err)
}

func (suite *PromptServiceTestSuite) TestAtMostOneDefaultPerCategory() {
	first, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "first",
		IsDefault:  true,
	})
	suite.Require().NoError(err)

	second, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "second",
		IsDefault:  true,
	})
	suite.Require().NoError(err)

	var defaults []models.Prompt
	suite.db.Where("category_id = ? AND is_default = ?", suite.category.ID, true).Find(&defaults)
	suite.Require().Len(defaults, 1)
	suite.Equal(second.ID, defaults[0].ID)

	// Promote the first one back.
	_, err = suite.service.SetDefaultPrompt(first.ID)
	suite.Require().NoError(err)

	defaults = nil
	suite.db.Where("category_id = ? AND is_default = ?", suite.category.ID, true).Find(&defaults)
	suite.Require().Len(defaults, 1)
	suite.Equal(first.ID, defaults[0].ID)
}

func (suite *PromptServiceTestSuite) TestDefaultsAreIndependentAcrossCategories() {
	rings := &models.Category{Name: "Rings", Prefix: "RING"}
	suite.Require().NoError(suite.db.Create(rings).Error)

	_, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "earring default",
		IsDefault:  true,
	})
	suite.Require().NoError(err)

	_, err = suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: rings.ID.String(),
		Text:       "ring default",
		IsDefault:  true,
	})
	suite.Require().NoError(err)

	var defaults []models.Prompt
	suite.db.Where("is_default = ?", true).Find(&defaults)
	suite.Len(defaults, 2)
}

func (suite *PromptServiceTestSuite) TestListPromptsActiveOnly() {
	active, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "active",
	})
	suite.Require().NoError(err)

	inactive := false
	_, err = suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "inactive",
	})
	suite.Require().NoError(err)

	var second models.Prompt
	suite.db.Where("text = ?", "inactive").First(&second)
	_, err = suite.service.UpdatePrompt(second.ID, &UpdatePromptRequest{IsActive: &inactive})
	suite.Require().NoError(err)

	prompts, err := suite.service.ListPrompts(&suite.category.ID, true)
	suite.Require().NoError(err)
	suite.Require().Len(prompts, 1)
	suite.Equal(active.ID, prompts[0].ID)
}

func (suite *PromptServiceTestSuite) TestDeletePrompt() {
	prompt, err := suite.service.CreatePrompt(&CreatePromptRequest{
		CategoryID: suite.category.ID.String(),
		Text:       "to delete",
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeletePrompt(prompt.ID))
	suite.Error(suite.service.DeletePrompt(prompt.ID))
}

func TestPromptServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PromptServiceTestSuite))
}
