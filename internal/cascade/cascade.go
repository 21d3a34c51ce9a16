// Package cascade removes content together with everything that depends
// on it. Each helper runs on the caller's transaction and returns the
// stored attachment file names; the caller unlinks them after commit.
package cascade

import (
	"fmt"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func DeletePosts(tx *gorm.DB, postIDs []uuid.UUID) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	var filenames []string
	if err := tx.Model(&entity.Attachment{}).
		Where("post_id IN ?", postIDs).
		Pluck("filename", &filenames).Error; err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	steps := []struct {
		name  string
		model interface{}
		where string
	}{
		{"comments", &entity.Comment{}, "post_id IN ?"},
		{"likes", &entity.Like{}, "post_id IN ?"},
		{"post tags", &entity.PostTag{}, "post_id IN ?"},
		{"attachments", &entity.Attachment{}, "post_id IN ?"},
		{"posts", &entity.Post{}, "id IN ?"},
	}
	for _, step := range steps {
		if err := tx.Where(step.where, postIDs).Delete(step.model).Error; err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", step.name, err)
		}
	}

	return filenames, nil
}

func DeleteBlogs(tx *gorm.DB, blogIDs []uuid.UUID) ([]string, error) {
	if len(blogIDs) == 0 {
		return nil, nil
	}

	var postIDs []uuid.UUID
	if err := tx.Model(&entity.Post{}).
		Where("blog_id IN ?", blogIDs).
		Pluck("id", &postIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	filenames, err := DeletePosts(tx, postIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Where("blog_id IN ?", blogIDs).Delete(&entity.Subscription{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete subscriptions: %w", err)
	}
	if err := tx.Where("id IN ?", blogIDs).Delete(&entity.Blog{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete blogs: %w", err)
	}

	return filenames, nil
}

// DeleteUser removes the account, its blogs (with their posts) and every
// comment, like, subscription and session the user made elsewhere.
func DeleteUser(tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	var blogIDs []uuid.UUID
	if err := tx.Model(&entity.Blog{}).
		Where("user_id = ?", userID).
		Pluck("id", &blogIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}

	filenames, err := DeleteBlogs(tx, blogIDs)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	if err := tx.Model(&entity.Attachment{}).
		Where("user_id = ?", userID).
		Pluck("filename", &uploaded).Error; err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	filenames = append(filenames, uploaded...)

	steps := []struct {
		name  string
		model interface{}
	}{
		{"attachments", &entity.Attachment{}},
		{"comments", &entity.Comment{}},
		{"likes", &entity.Like{}},
		{"subscriptions", &entity.Subscription{}},
		{"sessions", &session.Record{}},
	}
	for _, step := range steps {
		if err := tx.Where("user_id = ?", userID).Delete(step.model).Error; err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", step.name, err)
		}
	}

	res := tx.Delete(&entity.User{}, "id = ?", userID)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return filenames, nil
}
