package repository

import (
	"context"

	"anoa.com/blogspace/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagCount is a tag together with the number of posts carrying it.
type TagCount struct {
	entity.Tag
	PostCount int64
}

type TagRepository interface {
	FindByName(ctx context.Context, name string) (*entity.Tag, error)
	ListWithCounts(ctx context.Context) ([]TagCount, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindByName(ctx context.Context, name string) (*entity.Tag, error) {
	var tag entity.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) ListWithCounts(ctx context.Context) ([]TagCount, error) {
	var rows []TagCount
	err := r.db.WithContext(ctx).
		Model(&entity.Tag{}).
		Select("tags.*, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&rows).Error
	return rows, err
}

// Resolve returns the tag rows for names, creating the missing ones. Runs on
// the caller's transaction; a concurrent insert of the same name is absorbed
// by the conflict clause and the existing row is returned.
func Resolve(tx *gorm.DB, names []string) ([]entity.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tags := make([]entity.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, entity.Tag{Name: name})
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tags).Error; err != nil {
		return nil, err
	}

	var resolved []entity.Tag
	if err := tx.Where("name IN ?", names).Order("name ASC").Find(&resolved).Error; err != nil {
		return nil, err
	}
	return resolved, nil
}
