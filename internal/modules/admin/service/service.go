package admin

import (
	"context"
	"errors"
	"fmt"

	adminDto "anoa.com/blogspace/internal/modules/admin/dto"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	userDto "anoa.com/blogspace/internal/modules/user/dto"
	userRepo "anoa.com/blogspace/internal/modules/user/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/session"
	"anoa.com/blogspace/pkg/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminService interface {
	ListUsers(ctx context.Context, principal policy.Principal, query commonDto.PageQuery) (*adminDto.UserListResponse, error)
	// DeleteUser removes the account with its blogs, posts, comments, likes,
	// subscriptions and sessions, then unlinks the stored attachment files.
	DeleteUser(ctx context.Context, principal policy.Principal, userID uuid.UUID) error
}

type adminService struct {
	repo         userRepo.UserRepository
	sessions     session.Store
	attachments  attachment.AttachmentService
	imageStorage storage.ImageStorage
}

func NewAdminService(repo userRepo.UserRepository, sessions session.Store, attachments attachment.AttachmentService, imageStorage storage.ImageStorage) AdminService {
	return &adminService{
		repo:         repo,
		sessions:     sessions,
		attachments:  attachments,
		imageStorage: imageStorage,
	}
}

func (s *adminService) ListUsers(ctx context.Context, principal policy.Principal, query commonDto.PageQuery) (*adminDto.UserListResponse, error) {
	if err := policy.CanAdminister(principal).Err(); err != nil {
		return nil, err
	}

	query = query.Normalize()
	users, total, err := s.repo.List(ctx, query.Offset(), query.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]userDto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, userDto.NewUserResponse(&users[i]))
	}

	return &adminDto.UserListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query, total),
	}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, principal policy.Principal, userID uuid.UUID) error {
	if err := policy.CanAdminister(principal).Err(); err != nil {
		return err
	}
	if principal.UserID == userID {
		return fmt.Errorf("admins cannot delete their own account: %w", apperror.ErrInvalidInput)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	filenames, err := s.repo.Delete(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	// Redis-backed sessions live outside the transaction.
	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to revoke sessions")
	}

	s.attachments.RemoveFiles(ctx, filenames)

	if s.imageStorage != nil && user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.imageStorage.DeleteImage(ctx, *user.AvatarURL); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to delete avatar image")
		}
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("admin_id", principal.UserID.String()).
		Int("files", len(filenames)).
		Msg("user deleted")
	return nil
}
