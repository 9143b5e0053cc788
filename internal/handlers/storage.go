// internal/handlers/storage.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kivoa/catalog-backend/internal/services"
	"github.com/kivoa/catalog-backend/internal/utils"
)

type StorageHandler struct {
	storageService *services.StorageService
}

func NewStorageHandler(storageService *services.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

type presignUploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png"`
}

// POST /storage/presigned-url
// Lets a client upload a source photo straight to the bucket instead of
// proxying the bytes through the API.
func (h *StorageHandler) PresignUpload(c *gin.Context) {
	var req presignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	uploadURL, fileURL, err := h.storageService.GenerateUploadURL(req.Filename, req.ContentType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"presigned_url": uploadURL,
		"file_url":      fileURL,
	})
}

// GET /storage/presigned-url?key=...
func (h *StorageHandler) PresignDownload(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		utils.BadRequestResponse(c, "Missing key", nil)
		return
	}

	url, err := h.storageService.GeneratePresignedURL(key, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"presigned_url": url})
}
