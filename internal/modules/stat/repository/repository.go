package repository

import (
	"context"
	"fmt"

	"anoa.com/blogspace/internal/entity"
	"gorm.io/gorm"
)

type Totals struct {
	Users    int64
	Blogs    int64
	Posts    int64
	Comments int64
	Tags     int64
}

type StatRepository interface {
	Totals(ctx context.Context) (*Totals, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) Totals(ctx context.Context) (*Totals, error) {
	var totals Totals
	counts := []struct {
		name  string
		model interface{}
		dest  *int64
	}{
		{"users", &entity.User{}, &totals.Users},
		{"blogs", &entity.Blog{}, &totals.Blogs},
		{"posts", &entity.Post{}, &totals.Posts},
		{"comments", &entity.Comment{}, &totals.Comments},
		{"tags", &entity.Tag{}, &totals.Tags},
	}

	db := r.db.WithContext(ctx)
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}
	return &totals, nil
}
