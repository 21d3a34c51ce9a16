package repository

import (
	"context"
	"errors"

	"anoa.com/blogspace/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	// Toggle flips the subscription and reports whether the user is
	// subscribed afterwards.
	Toggle(ctx context.Context, userID, blogID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, blogID uuid.UUID) (bool, error)
	CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Toggle(ctx context.Context, userID, blogID uuid.UUID) (bool, error) {
	subscribed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND blog_id = ?", userID, blogID).Delete(&entity.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		if err := tx.Create(&entity.Subscription{UserID: userID, BlogID: blogID}).Error; err != nil {
			return err
		}
		subscribed = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request subscribed first.
		return true, nil
	}
	return subscribed, err
}

func (r *subscriptionRepository) Exists(ctx context.Context, userID, blogID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Subscription{}).
		Where("user_id = ? AND blog_id = ?", userID, blogID).
		Count(&count).Error
	return count > 0, err
}

func (r *subscriptionRepository) CountByBlog(ctx context.Context, blogID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Subscription{}).
		Where("blog_id = ?", blogID).
		Count(&count).Error
	return count, err
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Subscription, error) {
	var subs []entity.Subscription
	err := r.db.WithContext(ctx).
		Preload("Blog").
		Preload("Blog.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
