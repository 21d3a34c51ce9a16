package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		response.ResponseError(c, fmt.Errorf("file is required: %w", apperror.ErrInvalidInput))
		return
	}
	if err != nil {
		response.ValidationError(c, err)
		return
	}

	file, closeFile, err := dto.OpenUpload(header)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	resp, err := h.service.Upload(c.Request.Context(), middleware.GetPrincipal(c), postID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	attachmentID, err := response.ParseUUIDParam(c, "attachment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetPrincipal(c), attachmentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "attachment deleted"})
}

func (h *AttachmentHandler) ServeFile(c *gin.Context) {
	served, err := h.service.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Content-Type", served.MimeType)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": served.Name}))
	c.File(served.Path)
}
