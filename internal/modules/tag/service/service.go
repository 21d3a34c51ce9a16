package tag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/blogspace/internal/modules/tag/dto"
	"anoa.com/blogspace/internal/modules/tag/repository"
	"anoa.com/blogspace/pkg/apperror"
)

const MaxTagLength = 50

// ParseTagList turns a comma separated list into normalized tag names:
// trimmed, lowercased, empties dropped, first occurrence kept. A name
// longer than MaxTagLength runes is an input error.
func ParseTagList(raw string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > MaxTagLength {
			return nil, fmt.Errorf("tag %q is longer than %d characters: %w", name, MaxTagLength, apperror.ErrInvalidInput)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

type TagService interface {
	ListTags(ctx context.Context) ([]dto.TagResponse, error)
}

type tagService struct {
	repo repository.TagRepository
}

func NewTagService(repo repository.TagRepository) TagService {
	return &tagService{repo: repo}
}

func (s *tagService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	rows, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}

	tags := make([]dto.TagResponse, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, dto.TagResponse{
			ID:        row.ID,
			Name:      row.Name,
			PostCount: row.PostCount,
		})
	}
	return tags, nil
}
