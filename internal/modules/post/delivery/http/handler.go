package handler

import (
	"errors"
	"net/http"
	"strings"

	"anoa.com/blogspace/internal/middleware"
	postDto "anoa.com/blogspace/internal/modules/post/dto"
	post "anoa.com/blogspace/internal/modules/post/service"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service post.PostService
}

func NewPostHandler(service post.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	blogID, err := response.ParseUUIDParam(c, "blog_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req postDto.PostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	file, closeFile, err := optionalFile(c)
	if err != nil {
		response.ValidationError(c, err)
		return
	}
	defer closeFile()

	resp, err := h.service.CreatePost(c.Request.Context(), middleware.GetPrincipal(c), blogID, req, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req postDto.PostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	file, closeFile, err := optionalFile(c)
	if err != nil {
		response.ValidationError(c, err)
		return
	}
	defer closeFile()

	resp, err := h.service.UpdatePost(c.Request.Context(), middleware.GetPrincipal(c), postID, req, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), middleware.GetPrincipal(c), postID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := response.ParseUUIDParam(c, "post_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetPost(c.Request.Context(), middleware.GetPrincipal(c), postID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PostHandler) ListPostsByTag(c *gin.Context) {
	posts, err := h.service.ListPostsByTag(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": strings.ToLower(c.Param("name")), "data": posts})
}

// optionalFile returns the multipart "file" field, or nil when the request
// is not multipart or carries no file.
func optionalFile(c *gin.Context) (*dto.UploadFile, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	return dto.OpenUpload(header)
}
