package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/blogspace/internal/cascade"
	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	ErrDuplicateUser = fmt.Errorf("username or email already registered: %w", apperror.ErrConflict)
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, offset, limit int) ([]entity.User, int64, error)
	// Delete removes the user with everything they own and returns the
	// attachment file names to unlink.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create checks username and email availability and inserts in one
// transaction. A unique violation that slips past the check (concurrent
// registration) is reported as ErrDuplicateUser.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, user.Username, user.Email, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return err
		}
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, user.Username, user.Email, user.ID); err != nil {
			return err
		}
		err := tx.Model(&entity.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"username":   user.Username,
			"email":      user.Email,
			"bio":        user.Bio,
			"avatar_url": user.AvatarURL,
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return err
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]entity.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var filenames []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		filenames, err = cascade.DeleteUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return filenames, nil
}

func ensureUnique(tx *gorm.DB, username, email string, exclude uuid.UUID) error {
	checks := []struct {
		column string
		value  string
		err    error
	}{
		{"username", username, ErrUsernameTaken},
		{"email", email, ErrEmailTaken},
	}

	for _, check := range checks {
		var count int64
		q := tx.Model(&entity.User{}).Where(check.column+" = ?", check.value)
		if exclude != uuid.Nil {
			q = q.Where("id <> ?", exclude)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return check.err
		}
	}
	return nil
}
