package repository

import (
	"context"
	"errors"

	"anoa.com/blogspace/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	// Toggle removes the user's like if present, otherwise adds one, and
	// reports whether the post is liked afterwards.
	Toggle(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	HasLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with a slice avoids gorm's record-not-found log line.
		var existing []entity.Like
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			return tx.Delete(&existing[0]).Error
		}

		if err := tx.Create(&entity.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return liked, err
}

func (r *likeRepository) HasLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
