package subscription

import (
	"context"
	"errors"
	"fmt"

	blogRepo "anoa.com/blogspace/internal/modules/blog/repository"
	subDto "anoa.com/blogspace/internal/modules/subscription/dto"
	subRepo "anoa.com/blogspace/internal/modules/subscription/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	commonDto "anoa.com/blogspace/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	ToggleSubscription(ctx context.Context, principal policy.Principal, blogID uuid.UUID) (*subDto.ToggleResponse, error)
	ListSubscriptions(ctx context.Context, principal policy.Principal) ([]subDto.SubscriptionResponse, error)
}

type subscriptionService struct {
	repo     subRepo.SubscriptionRepository
	blogRepo blogRepo.BlogRepository
}

func NewSubscriptionService(repo subRepo.SubscriptionRepository, blogRepo blogRepo.BlogRepository) SubscriptionService {
	return &subscriptionService{repo: repo, blogRepo: blogRepo}
}

func (s *subscriptionService) ToggleSubscription(ctx context.Context, principal policy.Principal, blogID uuid.UUID) (*subDto.ToggleResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	blog, err := s.blogRepo.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := policy.CanSubscribe(principal, blog).Err(); err != nil {
		return nil, fmt.Errorf("you cannot subscribe to your own blog: %w", err)
	}

	subscribed, err := s.repo.Toggle(ctx, principal.UserID, blog.ID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountByBlog(ctx, blog.ID)
	if err != nil {
		return nil, err
	}

	return &subDto.ToggleResponse{
		BlogID:          blog.ID,
		Subscribed:      subscribed,
		SubscriberCount: count,
	}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, principal policy.Principal) ([]subDto.SubscriptionResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	subs, err := s.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	resp := make([]subDto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, subDto.SubscriptionResponse{
			BlogID:       sub.BlogID,
			BlogTitle:    sub.Blog.Title,
			Owner:        commonDto.NewAuthorResponse(&sub.Blog.User),
			SubscribedAt: sub.CreatedAt,
		})
	}
	return resp, nil
}
