package handler

import (
	"net/http"

	tag "anoa.com/blogspace/internal/modules/tag/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	service tag.TagService
}

func NewTagHandler(service tag.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags})
}
