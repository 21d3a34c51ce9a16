package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/blogspace/internal/entity"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	blog "anoa.com/blogspace/internal/modules/blog/service"
	profileDto "anoa.com/blogspace/internal/modules/profile/dto"
	userDto "anoa.com/blogspace/internal/modules/user/dto"
	userRepo "anoa.com/blogspace/internal/modules/user/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/storage"
	"anoa.com/blogspace/pkg/validator"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrAvatarUnavailable = fmt.Errorf("avatar uploads are not configured: %w", apperror.ErrInvalidInput)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, principal policy.Principal) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error)
	// UpdateProfile applies the non-nil fields of input. avatar may be nil.
	UpdateProfile(ctx context.Context, principal policy.Principal, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*profileDto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	blogs        blog.BlogService
	imageStorage storage.ImageStorage
}

// NewProfileService builds the profile service. imageStorage may be nil, in
// which case avatar uploads are rejected.
func NewProfileService(repo userRepo.UserRepository, blogs blog.BlogService, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		blogs:        blogs,
		imageStorage: imageStorage,
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, principal policy.Principal) (*profileDto.ProfileResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.ownProfile(ctx, user)
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.PublicProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	blogs, err := s.blogs.ListBlogsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &profileDto.PublicProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		Blogs:     blogs,
	}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, principal policy.Principal, input profileDto.UpdateProfileInput, avatar *commonDto.UploadFile) (*profileDto.ProfileResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	trimOptional(&input.Username)
	trimOptional(&input.Email)
	trimOptional(&input.Bio)
	if input.Email != nil {
		lowered := strings.ToLower(*input.Email)
		input.Email = &lowered
	}
	if err := validator.Validate(&input); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Username != nil && *input.Username != "" {
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != "" {
		user.Email = *input.Email
	}
	if input.Bio != nil {
		if *input.Bio == "" {
			user.Bio = nil
		} else {
			user.Bio = input.Bio
		}
	}

	oldAvatar := user.AvatarURL
	var newAvatar string
	if avatar != nil && strings.TrimSpace(avatar.FileName) != "" {
		newAvatar, err = s.uploadAvatar(ctx, avatar)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &newAvatar
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if newAvatar != "" {
			s.deleteImage(ctx, newAvatar)
		}
		return nil, err
	}

	if newAvatar != "" && oldAvatar != nil && *oldAvatar != "" {
		s.deleteImage(ctx, *oldAvatar)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("profile updated")

	return s.ownProfile(ctx, user)
}

func (s *profileService) uploadAvatar(ctx context.Context, avatar *commonDto.UploadFile) (string, error) {
	if s.imageStorage == nil {
		return "", ErrAvatarUnavailable
	}

	_, fileType, err := attachment.Classify(avatar.FileName, avatar.ContentType)
	if err != nil {
		return "", err
	}
	if fileType != entity.FileTypeImage {
		return "", fmt.Errorf("avatar must be an image: %w", apperror.ErrInvalidInput)
	}

	url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, avatar.FileName)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return url, nil
}

func (s *profileService) deleteImage(ctx context.Context, url string) {
	if s.imageStorage == nil {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to delete avatar image")
	}
}

func (s *profileService) ownProfile(ctx context.Context, user *entity.User) (*profileDto.ProfileResponse, error) {
	blogs, err := s.blogs.ListBlogsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &profileDto.ProfileResponse{
		User:  userDto.NewUserResponse(user),
		Blogs: blogs,
	}, nil
}

func trimOptional(v **string) {
	if *v == nil {
		return
	}
	trimmed := strings.TrimSpace(**v)
	*v = &trimmed
}
