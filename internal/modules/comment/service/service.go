package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/blogspace/internal/entity"
	commentDto "anoa.com/blogspace/internal/modules/comment/dto"
	commentRepo "anoa.com/blogspace/internal/modules/comment/repository"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	userRepo "anoa.com/blogspace/internal/modules/user/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(ctx context.Context, principal policy.Principal, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error)
	DeleteComment(ctx context.Context, principal policy.Principal, commentID uuid.UUID) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]commentDto.CommentResponse, error)
}

type commentService struct {
	repo      commentRepo.CommentRepository
	postRepo  postRepo.PostRepository
	userRepo  userRepo.UserRepository
	limiter   *ratelimiter.Limiter
	rateLimit time.Duration
}

func NewCommentService(repo commentRepo.CommentRepository, postRepo postRepo.PostRepository, userRepo userRepo.UserRepository, limiter *ratelimiter.Limiter, rateLimit time.Duration) CommentService {
	return &commentService{
		repo:      repo,
		postRepo:  postRepo,
		userRepo:  userRepo,
		limiter:   limiter,
		rateLimit: rateLimit,
	}
}

func (s *commentService) CreateComment(ctx context.Context, principal policy.Principal, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Content)
	if text == "" {
		return nil, fmt.Errorf("comment cannot be empty: %w", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > commentDto.MaxCommentLength {
		return nil, fmt.Errorf("comment must be at most %d characters: %w", commentDto.MaxCommentLength, apperror.ErrInvalidInput)
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	release, err := s.limiter.Reserve(ctx, principal.UserID, ratelimiter.ScopeComment, s.rateLimit)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		PostID:  postID,
		UserID:  principal.UserID,
		Content: text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		release()
		return nil, err
	}

	author, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err == nil {
		comment.User = *author
	}

	log.Info().
		Str("comment_id", comment.ID.String()).
		Str("post_id", postID.String()).
		Str("user_id", principal.UserID.String()).
		Msg("comment created")

	resp := commentDto.NewCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, principal policy.Principal, commentID uuid.UUID) error {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return err
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := policy.CanDeleteComment(principal, comment, &comment.Post.Blog).Err(); err != nil {
		return fmt.Errorf("not allowed to delete this comment: %w", err)
	}

	if err := s.repo.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) ListComments(ctx context.Context, postID uuid.UUID) ([]commentDto.CommentResponse, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp := make([]commentDto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, commentDto.NewCommentResponse(&comments[i]))
	}
	return resp, nil
}
