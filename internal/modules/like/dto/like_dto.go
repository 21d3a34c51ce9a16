package dto

import "github.com/google/uuid"

type LikeResponse struct {
	PostID uuid.UUID `json:"post_id"`
	Liked  bool      `json:"liked"`
	Count  int64     `json:"count"`
}
