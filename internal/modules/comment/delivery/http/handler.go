package handler

import (
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	commentDto "anoa.com/blogspace/internal/modules/comment/dto"
	comment "anoa.com/blogspace/internal/modules/comment/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req commentDto.CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateComment(c.Request.Context(), middleware.GetPrincipal(c), postID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, err := response.ParseUUIDParam(c, "comment_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.GetPrincipal(c), commentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
