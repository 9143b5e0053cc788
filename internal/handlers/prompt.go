// internal/handlers/prompt.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kivoa/catalog-backend/internal/services"
	"github.com/kivoa/catalog-backend/internal/utils"
)

type PromptHandler struct {
	promptService *services.PromptService
}

func NewPromptHandler(promptService *services.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// GET /prompts
func (h *PromptHandler) GetPrompts(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category ID", nil)
			return
		}
		categoryID = &id
	}

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))

	prompts, err := h.promptService.ListPrompts(categoryID, activeOnly)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"prompts": prompts})
}

// POST /prompts
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	var req services.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	prompt, err := h.promptService.CreatePrompt(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, prompt)
}

// GET /prompts/:id
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	prompt, err := h.promptService.GetPrompt(id)
	if err != nil {
		utils.NotFoundResponse(c, "Prompt")
		return
	}

	utils.SuccessResponse(c, prompt)
}

// PUT /prompts/:id
func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	var req services.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	prompt, err := h.promptService.UpdatePrompt(id, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, prompt)
}

// PUT /prompts/:id/default
func (h *PromptHandler) SetDefaultPrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	prompt, err := h.promptService.SetDefaultPrompt(id)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, prompt)
}

// DELETE /prompts/:id
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid prompt ID", nil)
		return
	}

	if err := h.promptService.DeletePrompt(id); err != nil {
		utils.NotFoundResponse(c, "Prompt")
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
