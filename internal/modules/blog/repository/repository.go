package repository

import (
	"context"

	"anoa.com/blogspace/internal/cascade"
	"anoa.com/blogspace/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogStats is a blog row with its owner and aggregate counts.
type BlogStats struct {
	entity.Blog
	OwnerUsername  string
	OwnerAvatarURL *string
	PostCount      int64
}

type BlogRepository interface {
	Create(ctx context.Context, blog *entity.Blog) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Blog, error)
	Update(ctx context.Context, blog *entity.Blog) error
	// Delete removes the blog with all of its content and returns the
	// attachment file names that are no longer referenced.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	// List returns every blog newest first.
	List(ctx context.Context) ([]BlogStats, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]BlogStats, error)
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *entity.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Blog, error) {
	var blog entity.Blog
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&blog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *entity.Blog) error {
	return r.db.WithContext(ctx).
		Model(&entity.Blog{}).
		Where("id = ?", blog.ID).
		Updates(map[string]interface{}{
			"title":       blog.Title,
			"description": blog.Description,
		}).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var filenames []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Blog{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		var err error
		filenames, err = cascade.DeleteBlogs(tx, []uuid.UUID{id})
		return err
	})
	return filenames, err
}

func (r *blogRepository) List(ctx context.Context) ([]BlogStats, error) {
	var rows []BlogStats
	err := r.statsQuery(ctx).Scan(&rows).Error
	return rows, err
}

func (r *blogRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]BlogStats, error) {
	var rows []BlogStats
	err := r.statsQuery(ctx).Where("blogs.user_id = ?", userID).Scan(&rows).Error
	return rows, err
}

func (r *blogRepository) statsQuery(ctx context.Context) *gorm.DB {
	postCounts := r.db.Model(&entity.Post{}).
		Select("blog_id, COUNT(*) AS post_count").
		Group("blog_id")

	return r.db.WithContext(ctx).
		Model(&entity.Blog{}).
		Select("blogs.*, users.username AS owner_username, users.avatar_url AS owner_avatar_url, COALESCE(pc.post_count, 0) AS post_count").
		Joins("JOIN users ON users.id = blogs.user_id").
		Joins("LEFT JOIN (?) AS pc ON pc.blog_id = blogs.id", postCounts).
		Order("blogs.created_at DESC").
		Order("blogs.id DESC")
}
