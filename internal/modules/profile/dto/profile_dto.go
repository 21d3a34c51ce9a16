package dto

import (
	"time"

	"anoa.com/blogspace/internal/entity"
	blogDto "anoa.com/blogspace/internal/modules/blog/dto"
	userDto "anoa.com/blogspace/internal/modules/user/dto"
	"github.com/google/uuid"
)

// UpdateProfileInput represents the input for updating user profile. Nil
// fields are left unchanged; an empty bio clears it.
type UpdateProfileInput struct {
	Username *string `json:"username" form:"username" binding:"omitempty,min=2,max=80"`
	Email    *string `json:"email" form:"email" binding:"omitempty,email,max=120"`
	Bio      *string `json:"bio" form:"bio" binding:"omitempty,max=1000"`
}

// ProfileResponse is the signed-in user's own view, including the email.
type ProfileResponse struct {
	User  userDto.UserResponse   `json:"user"`
	Blogs []blogDto.BlogResponse `json:"blogs"`
}

// PublicProfileResponse is returned when viewing another user's public profile
type PublicProfileResponse struct {
	ID        uuid.UUID              `json:"id"`
	Username  string                 `json:"username"`
	Role      entity.Role            `json:"role"`
	Bio       *string                `json:"bio,omitempty"`
	AvatarURL *string                `json:"avatar_url,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Blogs     []blogDto.BlogResponse `json:"blogs"`
}
