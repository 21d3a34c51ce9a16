package handler

import (
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	like "anoa.com/blogspace/internal/modules/like/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

func (h *LikeHandler) ToggleLike(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ToggleLike(c.Request.Context(), middleware.GetPrincipal(c), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
