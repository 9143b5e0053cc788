// internal/handlers/raw_image.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kivoa/catalog-backend/internal/services"
	"github.com/kivoa/catalog-backend/internal/utils"
)

const maxUploadSize = 20 << 20 // 20 MB

type RawImageHandler struct {
	rawImageService *services.RawImageService
}

func NewRawImageHandler(rawImageService *services.RawImageService) *RawImageHandler {
	return &RawImageHandler{rawImageService: rawImageService}
}

// POST /raw-images (multipart)
func (h *RawImageHandler) UploadRawImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file", err.Error())
		return
	}
	if fileHeader.Size > maxUploadSize {
		utils.BadRequestResponse(c, "File too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	rawImage, err := h.rawImageService.UploadRawImage(c.Request.Context(), data, fileHeader.Filename, contentType)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, rawImage)
}

// GET /raw-images
func (h *RawImageHandler) GetRawImages(c *gin.Context) {
	images, err := h.rawImageService.ListRawImages()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"raw_images": images})
}

// DELETE /raw-images/:id
func (h *RawImageHandler) DeleteRawImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid raw image ID", nil)
		return
	}

	if err := h.rawImageService.DeleteRawImage(c.Request.Context(), id); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
