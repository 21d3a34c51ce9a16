package dto

import "github.com/google/uuid"

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PostCount int64     `json:"post_count"`
}
