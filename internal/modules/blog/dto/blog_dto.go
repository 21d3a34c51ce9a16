package dto

import (
	"time"

	postDto "anoa.com/blogspace/internal/modules/post/dto"
	commonDto "anoa.com/blogspace/pkg/dto"
	"github.com/google/uuid"
)

type BlogRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=150"`
	Description string `json:"description" form:"description" binding:"required"`
}

type BlogResponse struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Owner       commonDto.AuthorResponse `json:"owner"`
	PostCount   int64                    `json:"post_count"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type BlogDetailResponse struct {
	BlogResponse
	Posts           []postDto.PostSummary `json:"posts"`
	SubscriberCount int64                 `json:"subscriber_count"`
	IsSubscribed    bool                  `json:"is_subscribed"`
	IsOwner         bool                  `json:"is_owner"`
}
