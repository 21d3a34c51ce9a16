package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/blogspace/internal/entity"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	blogDto "anoa.com/blogspace/internal/modules/blog/dto"
	blogRepo "anoa.com/blogspace/internal/modules/blog/repository"
	post "anoa.com/blogspace/internal/modules/post/service"
	subRepo "anoa.com/blogspace/internal/modules/subscription/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BlogService interface {
	CreateBlog(ctx context.Context, principal policy.Principal, req blogDto.BlogRequest) (*blogDto.BlogResponse, error)
	UpdateBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID, req blogDto.BlogRequest) (*blogDto.BlogResponse, error)
	DeleteBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID) error
	ListBlogs(ctx context.Context) ([]blogDto.BlogResponse, error)
	ListBlogsByUser(ctx context.Context, userID uuid.UUID) ([]blogDto.BlogResponse, error)
	GetBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID) (*blogDto.BlogDetailResponse, error)
}

type blogService struct {
	repo        blogRepo.BlogRepository
	subRepo     subRepo.SubscriptionRepository
	posts       post.PostService
	attachments attachment.AttachmentService
}

func NewBlogService(repo blogRepo.BlogRepository, subRepo subRepo.SubscriptionRepository, posts post.PostService, attachments attachment.AttachmentService) BlogService {
	return &blogService{
		repo:        repo,
		subRepo:     subRepo,
		posts:       posts,
		attachments: attachments,
	}
}

func (s *blogService) CreateBlog(ctx context.Context, principal policy.Principal, req blogDto.BlogRequest) (*blogDto.BlogResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}

	blog := &entity.Blog{
		UserID:      principal.UserID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, err
	}

	log.Info().
		Str("blog_id", blog.ID.String()).
		Str("user_id", principal.UserID.String()).
		Msg("blog created")

	return s.reload(ctx, blog.ID)
}

func (s *blogService) UpdateBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID, req blogDto.BlogRequest) (*blogDto.BlogResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}

	blog, err := s.findBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManageBlog(principal, blog).Err(); err != nil {
		return nil, fmt.Errorf("only the owner can edit this blog: %w", err)
	}

	blog.Title = req.Title
	blog.Description = req.Description
	if err := s.repo.Update(ctx, blog); err != nil {
		return nil, err
	}

	return s.reload(ctx, blog.ID)
}

func (s *blogService) DeleteBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID) error {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return err
	}

	blog, err := s.findBlog(ctx, blogID)
	if err != nil {
		return err
	}

	if err := policy.CanManageBlog(principal, blog).Err(); err != nil {
		return fmt.Errorf("only the owner can delete this blog: %w", err)
	}

	filenames, err := s.repo.Delete(ctx, blog.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.RemoveFiles(ctx, filenames)

	log.Info().
		Str("blog_id", blog.ID.String()).
		Int("files", len(filenames)).
		Msg("blog deleted")
	return nil
}

func (s *blogService) ListBlogs(ctx context.Context) ([]blogDto.BlogResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapStats(rows), nil
}

func (s *blogService) ListBlogsByUser(ctx context.Context, userID uuid.UUID) ([]blogDto.BlogResponse, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mapStats(rows), nil
}

func (s *blogService) GetBlog(ctx context.Context, principal policy.Principal, blogID uuid.UUID) (*blogDto.BlogDetailResponse, error) {
	blog, err := s.findBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListPostsByBlog(ctx, blog.ID)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subRepo.CountByBlog(ctx, blog.ID)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if principal.IsAuthenticated() {
		subscribed, err = s.subRepo.Exists(ctx, principal.UserID, blog.ID)
		if err != nil {
			return nil, err
		}
	}

	return &blogDto.BlogDetailResponse{
		BlogResponse: blogDto.BlogResponse{
			ID:          blog.ID,
			Title:       blog.Title,
			Description: blog.Description,
			Owner:       commonDto.NewAuthorResponse(&blog.User),
			PostCount:   int64(len(posts)),
			CreatedAt:   blog.CreatedAt,
			UpdatedAt:   blog.UpdatedAt,
		},
		Posts:           posts,
		SubscriberCount: subscribers,
		IsSubscribed:    subscribed,
		IsOwner:         policy.CanManageBlog(principal, blog).Allowed(),
	}, nil
}

func (s *blogService) findBlog(ctx context.Context, blogID uuid.UUID) (*entity.Blog, error) {
	blog, err := s.repo.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return blog, nil
}

func (s *blogService) reload(ctx context.Context, blogID uuid.UUID) (*blogDto.BlogResponse, error) {
	blog, err := s.findBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}
	return &blogDto.BlogResponse{
		ID:          blog.ID,
		Title:       blog.Title,
		Description: blog.Description,
		Owner:       commonDto.NewAuthorResponse(&blog.User),
		CreatedAt:   blog.CreatedAt,
		UpdatedAt:   blog.UpdatedAt,
	}, nil
}

func mapStats(rows []blogRepo.BlogStats) []blogDto.BlogResponse {
	blogs := make([]blogDto.BlogResponse, 0, len(rows))
	for _, row := range rows {
		blogs = append(blogs, blogDto.BlogResponse{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Owner: commonDto.AuthorResponse{
				ID:        row.UserID,
				Username:  row.OwnerUsername,
				AvatarURL: row.OwnerAvatarURL,
			},
			PostCount: row.PostCount,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return blogs
}

func normalizeRequest(req *blogDto.BlogRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	return validator.Validate(req)
}
