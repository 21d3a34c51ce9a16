package dto

import (
	"time"

	commentDto "anoa.com/blogspace/internal/modules/comment/dto"
	commonDto "anoa.com/blogspace/pkg/dto"
	"github.com/google/uuid"
)

// PostRequest is shared by create and update. Tags is a comma separated
// list; an empty list clears the post's tags on update.
type PostRequest struct {
	Title   string `json:"title" form:"title" binding:"required,max=150"`
	Content string `json:"content" form:"content" binding:"required"`
	Tags    string `json:"tags" form:"tags"`
}

type BlogRef struct {
	ID    uuid.UUID                `json:"id"`
	Title string                   `json:"title"`
	Owner commonDto.AuthorResponse `json:"owner"`
}

type PostLink struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type PostSummary struct {
	ID        uuid.UUID `json:"id"`
	BlogID    uuid.UUID `json:"blog_id"`
	Blog      *BlogRef  `json:"blog,omitempty"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostResponse struct {
	ID          uuid.UUID                      `json:"id"`
	Blog        BlogRef                        `json:"blog"`
	Title       string                         `json:"title"`
	Content     string                         `json:"content"`
	ContentHTML string                         `json:"content_html"`
	Tags        []string                       `json:"tags"`
	Attachments []commonDto.AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`

	// AttachmentError is set when the post was saved but the file sent
	// along with it was rejected.
	AttachmentError string `json:"attachment_error,omitempty"`
}

type PostDetailResponse struct {
	PostResponse
	Comments  []commentDto.CommentResponse `json:"comments"`
	LikeCount int64                        `json:"like_count"`
	LikedByMe bool                         `json:"liked_by_me"`
	CanManage bool                         `json:"can_manage"`
	Prev      *PostLink                    `json:"prev"`
	Next      *PostLink                    `json:"next"`
}
