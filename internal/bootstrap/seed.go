package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entity.Post{}, "Tags", &entity.PostTag{}); err != nil {
		return fmt.Errorf("failed to set up post_tags join table: %w", err)
	}

	return db.AutoMigrate(
		&entity.User{},
		&entity.Blog{},
		&entity.Post{},
		&entity.Tag{},
		&entity.PostTag{},
		&entity.Comment{},
		&entity.Like{},
		&entity.Subscription{},
		&entity.Attachment{},
		&session.Record{},
	)
}

// SeedAdminUser creates the development admin account once.
func SeedAdminUser(ctx context.Context, db *gorm.DB, email, password string) error {
	var existing entity.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Info().Str("email", email).Msg("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	bio := "Site administrator"
	admin := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
		Bio:          &bio,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("admin user seeded")
	return nil
}
