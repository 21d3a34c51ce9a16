package like

import (
	"context"
	"errors"
	"fmt"

	likeDto "anoa.com/blogspace/internal/modules/like/dto"
	likeRepo "anoa.com/blogspace/internal/modules/like/repository"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeService interface {
	ToggleLike(ctx context.Context, principal policy.Principal, postID uuid.UUID) (*likeDto.LikeResponse, error)
}

type likeService struct {
	repo     likeRepo.LikeRepository
	postRepo postRepo.PostRepository
}

func NewLikeService(repo likeRepo.LikeRepository, postRepo postRepo.PostRepository) LikeService {
	return &likeService{repo: repo, postRepo: postRepo}
}

func (s *likeService) ToggleLike(ctx context.Context, principal policy.Principal, postID uuid.UUID) (*likeDto.LikeResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	liked, err := s.repo.Toggle(ctx, principal.UserID, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &likeDto.LikeResponse{PostID: postID, Liked: liked, Count: count}, nil
}
