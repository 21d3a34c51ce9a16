package dto

import (
	"time"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/content"
	commonDto "anoa.com/blogspace/pkg/dto"
	"github.com/google/uuid"
)

const MaxCommentLength = 500

type CreateCommentRequest struct {
	Content string `json:"content" form:"content" binding:"required"`
}

type CommentResponse struct {
	ID          uuid.UUID                `json:"id"`
	PostID      uuid.UUID                `json:"post_id"`
	Author      commonDto.AuthorResponse `json:"author"`
	Content     string                   `json:"content"`
	ContentHTML string                   `json:"content_html"`
	CreatedAt   time.Time                `json:"created_at"`
}

func NewCommentResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		PostID:      c.PostID,
		Author:      commonDto.NewAuthorResponse(&c.User),
		Content:     c.Content,
		ContentHTML: content.RenderText(c.Content),
		CreatedAt:   c.CreatedAt,
	}
}
