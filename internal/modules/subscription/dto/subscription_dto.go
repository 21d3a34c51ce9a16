package dto

import (
	"time"

	commonDto "anoa.com/blogspace/pkg/dto"
	"github.com/google/uuid"
)

type ToggleResponse struct {
	BlogID          uuid.UUID `json:"blog_id"`
	Subscribed      bool      `json:"subscribed"`
	SubscriberCount int64     `json:"subscriber_count"`
}

type SubscriptionResponse struct {
	BlogID       uuid.UUID                `json:"blog_id"`
	BlogTitle    string                   `json:"blog_title"`
	Owner        commonDto.AuthorResponse `json:"owner"`
	SubscribedAt time.Time                `json:"subscribed_at"`
}
