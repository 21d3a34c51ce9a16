package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/internal/modules/user/dto"
	"anoa.com/blogspace/internal/modules/user/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/session"
	"anoa.com/blogspace/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password", apperror.ErrUnauthorized)

// Identity is what a valid session token resolves to.
type Identity struct {
	Principal policy.Principal
	SessionID uuid.UUID
	User      *entity.User
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.UserResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	ChangePassword(ctx context.Context, principal policy.Principal, input dto.ChangePasswordInput) error
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

type Options struct {
	Secret     string
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type authService struct {
	repo     repository.UserRepository
	sessions session.Store
	opts     Options

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(repo repository.UserRepository, sessions session.Store, opts Options) AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &authService{
		repo:     repo,
		sessions: sessions,
		opts:     opts,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.UserResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	if err := validator.Validate(&input); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         entity.RoleReader,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same bcrypt work as a real account so response time does not
			// reveal whether the email exists.
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(), []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if _, err := entity.ParseRole(string(user.Role)); err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}

	sess, err := s.sessions.Create(ctx, user.ID, s.opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := session.SignToken(s.opts.Secret, sess)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *authService) ChangePassword(ctx context.Context, principal policy.Principal, input dto.ChangePasswordInput) error {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return err
	}
	if err := validator.Validate(&input); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, user.ID, string(hashed))
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	sessionID, userID, err := session.ParseToken(s.opts.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrUnauthorized)
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%v: %w", err, apperror.ErrUnauthorized)
		}
		return nil, err
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("session does not match token: %w", apperror.ErrUnauthorized)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	role, err := entity.ParseRole(string(user.Role))
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("rejecting session for user with unknown role")
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrUnauthorized)
	}

	return &Identity{
		Principal: policy.Principal{UserID: user.ID, Role: role},
		SessionID: sess.ID,
		User:      user,
	}, nil
}

func (s *authService) getDummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), s.opts.BcryptCost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
