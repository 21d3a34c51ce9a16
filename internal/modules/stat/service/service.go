package stat

import (
	"context"

	statDto "anoa.com/blogspace/internal/modules/stat/dto"
	"anoa.com/blogspace/internal/modules/stat/repository"
)

type StatService interface {
	GetSiteStats(ctx context.Context) (*statDto.SiteStatsResponse, error)
}

type statService struct {
	repo repository.StatRepository
}

func NewStatService(repo repository.StatRepository) StatService {
	return &statService{
		repo: repo,
	}
}

func (s *statService) GetSiteStats(ctx context.Context) (*statDto.SiteStatsResponse, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &statDto.SiteStatsResponse{
		TotalUsers:    totals.Users,
		TotalBlogs:    totals.Blogs,
		TotalPosts:    totals.Posts,
		TotalComments: totals.Comments,
		TotalTags:     totals.Tags,
	}, nil
}
