package repository

import (
	"context"

	"anoa.com/blogspace/internal/cascade"
	"anoa.com/blogspace/internal/entity"
	tagRepo "anoa.com/blogspace/internal/modules/tag/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	// Create inserts the post and links it to tagNames in one transaction.
	Create(ctx context.Context, post *entity.Post, tagNames []string) error
	// FindByID loads the post with its blog (and owner), tags and
	// attachments.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	// Update saves title and content and replaces the tag set atomically.
	Update(ctx context.Context, post *entity.Post, tagNames []string) error
	// Delete removes the post with its comments, likes, tag links and
	// attachment rows and returns the attachment file names.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	ListByBlog(ctx context.Context, blogID uuid.UUID) ([]entity.Post, error)
	ListByTag(ctx context.Context, tagName string) ([]entity.Post, error)
	// Neighbors returns the previous (older) and next (newer) post of the
	// same blog, ordered by creation time. Either may be nil.
	Neighbors(ctx context.Context, post *entity.Post) (prev *entity.Post, next *entity.Post, err error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Attachments").Create(post).Error; err != nil {
			return err
		}
		tags, err := replaceTags(tx, post.ID, tagNames)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("Blog.User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachments.created_at ASC")
		}).
		First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"title":   post.Title,
				"content": post.Content,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		tags, err := replaceTags(tx, post.ID, tagNames)
		if err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var filenames []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		var err error
		filenames, err = cascade.DeletePosts(tx, []uuid.UUID{id})
		return err
	})
	return filenames, err
}

// ListByBlog returns the blog's posts newest first.
func (r *postRepository) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Where("blog_id = ?", blogID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByTag(ctx context.Context, tagName string) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Preload("Blog.User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Select("posts.*").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name = ?", tagName).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Neighbors(ctx context.Context, post *entity.Post) (*entity.Post, *entity.Post, error) {
	db := r.db.WithContext(ctx)

	var older []entity.Post
	if err := db.
		Select("id", "blog_id", "title", "created_at").
		Where("blog_id = ?", post.BlogID).
		Where("(created_at < ? OR (created_at = ? AND id < ?))", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&older).Error; err != nil {
		return nil, nil, err
	}

	var newer []entity.Post
	if err := db.
		Select("id", "blog_id", "title", "created_at").
		Where("blog_id = ?", post.BlogID).
		Where("(created_at > ? OR (created_at = ? AND id > ?))", post.CreatedAt, post.CreatedAt, post.ID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&newer).Error; err != nil {
		return nil, nil, err
	}

	var prev, next *entity.Post
	if len(older) > 0 {
		prev = &older[0]
	}
	if len(newer) > 0 {
		next = &newer[0]
	}
	return prev, next, nil
}

func replaceTags(tx *gorm.DB, postID uuid.UUID, tagNames []string) ([]entity.Tag, error) {
	if err := tx.Where("post_id = ?", postID).Delete(&entity.PostTag{}).Error; err != nil {
		return nil, err
	}

	tags, err := tagRepo.Resolve(tx, tagNames)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return tags, nil
	}

	links := make([]entity.PostTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, entity.PostTag{PostID: postID, TagID: tag.ID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
