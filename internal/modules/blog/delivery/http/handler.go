package handler

import (
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	blogDto "anoa.com/blogspace/internal/modules/blog/dto"
	blog "anoa.com/blogspace/internal/modules/blog/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	service blog.BlogService
}

func NewBlogHandler(service blog.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

func (h *BlogHandler) CreateBlog(c *gin.Context) {
	var req blogDto.BlogRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreateBlog(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *BlogHandler) ListBlogs(c *gin.Context) {
	blogs, err := h.service.ListBlogs(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": blogs})
}

func (h *BlogHandler) GetBlog(c *gin.Context) {
	blogID, err := response.ParseUUIDParam(c, "blog_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetBlog(c.Request.Context(), middleware.GetPrincipal(c), blogID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) UpdateBlog(c *gin.Context) {
	blogID, err := response.ParseUUIDParam(c, "blog_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req blogDto.BlogRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateBlog(c.Request.Context(), middleware.GetPrincipal(c), blogID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	blogID, err := response.ParseUUIDParam(c, "blog_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteBlog(c.Request.Context(), middleware.GetPrincipal(c), blogID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "blog deleted"})
}
