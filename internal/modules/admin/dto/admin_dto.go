package dto

import (
	userDto "anoa.com/blogspace/internal/modules/user/dto"
	commonDto "anoa.com/blogspace/pkg/dto"
)

type UserListResponse struct {
	Data []userDto.UserResponse  `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
