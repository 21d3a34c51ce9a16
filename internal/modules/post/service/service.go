package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/blogspace/internal/entity"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	blogRepo "anoa.com/blogspace/internal/modules/blog/repository"
	commentDto "anoa.com/blogspace/internal/modules/comment/dto"
	commentRepo "anoa.com/blogspace/internal/modules/comment/repository"
	likeRepo "anoa.com/blogspace/internal/modules/like/repository"
	postDto "anoa.com/blogspace/internal/modules/post/dto"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	tagRepo "anoa.com/blogspace/internal/modules/tag/repository"
	tag "anoa.com/blogspace/internal/modules/tag/service"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/ratelimiter"
	"anoa.com/blogspace/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PostService interface {
	// CreatePost publishes a post in blogID. file may be nil. A rejected
	// file does not undo the post; the reason is returned in
	// PostResponse.AttachmentError.
	CreatePost(ctx context.Context, principal policy.Principal, blogID uuid.UUID, req postDto.PostRequest, file *dto.UploadFile) (*postDto.PostResponse, error)
	UpdatePost(ctx context.Context, principal policy.Principal, postID uuid.UUID, req postDto.PostRequest, file *dto.UploadFile) (*postDto.PostResponse, error)
	DeletePost(ctx context.Context, principal policy.Principal, postID uuid.UUID) error
	GetPost(ctx context.Context, principal policy.Principal, postID uuid.UUID) (*postDto.PostDetailResponse, error)
	ListPostsByBlog(ctx context.Context, blogID uuid.UUID) ([]postDto.PostSummary, error)
	ListPostsByTag(ctx context.Context, name string) ([]postDto.PostSummary, error)
}

type Options struct {
	RateLimit time.Duration
}

type postService struct {
	postRepo    postRepo.PostRepository
	blogRepo    blogRepo.BlogRepository
	tagRepo     tagRepo.TagRepository
	commentRepo commentRepo.CommentRepository
	likeRepo    likeRepo.LikeRepository
	attachments attachment.AttachmentService
	limiter     *ratelimiter.Limiter
	opts        Options
}

func NewPostService(
	postRepo postRepo.PostRepository,
	blogRepo blogRepo.BlogRepository,
	tagRepo tagRepo.TagRepository,
	commentRepo commentRepo.CommentRepository,
	likeRepo likeRepo.LikeRepository,
	attachments attachment.AttachmentService,
	limiter *ratelimiter.Limiter,
	opts Options,
) PostService {
	return &postService{
		postRepo:    postRepo,
		blogRepo:    blogRepo,
		tagRepo:     tagRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		attachments: attachments,
		limiter:     limiter,
		opts:        opts,
	}
}

func (s *postService) CreatePost(ctx context.Context, principal policy.Principal, blogID uuid.UUID, req postDto.PostRequest, file *dto.UploadFile) (*postDto.PostResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	tags, err := normalizeRequest(&req)
	if err != nil {
		return nil, err
	}

	blog, err := s.blogRepo.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blog not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := policy.CanManageBlog(principal, blog).Err(); err != nil {
		return nil, fmt.Errorf("only the blog owner can publish posts: %w", err)
	}

	release, err := s.limiter.Reserve(ctx, principal.UserID, ratelimiter.ScopePost, s.opts.RateLimit)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		BlogID:  blog.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.postRepo.Create(ctx, post, tags); err != nil {
		release()
		return nil, err
	}

	log.Info().
		Str("post_id", post.ID.String()).
		Str("blog_id", blog.ID.String()).
		Strs("tags", tags).
		Msg("post created")

	return s.finishWrite(ctx, principal, post.ID, file)
}

func (s *postService) UpdatePost(ctx context.Context, principal policy.Principal, postID uuid.UUID, req postDto.PostRequest, file *dto.UploadFile) (*postDto.PostResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	tags, err := normalizeRequest(&req)
	if err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManageBlog(principal, &post.Blog).Err(); err != nil {
		return nil, fmt.Errorf("only the blog owner can edit this post: %w", err)
	}

	post.Title = req.Title
	post.Content = req.Content
	if err := s.postRepo.Update(ctx, post, tags); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return s.finishWrite(ctx, principal, post.ID, file)
}

// finishWrite runs the attachment pipeline for a committed post and builds
// the response from a fresh read.
func (s *postService) finishWrite(ctx context.Context, principal policy.Principal, postID uuid.UUID, file *dto.UploadFile) (*postDto.PostResponse, error) {
	var attachmentErr string
	if _, err := s.attachments.Store(ctx, principal.UserID, postID, file); err != nil {
		attachmentErr = attachmentErrorMessage(err)
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp := mapToResponse(post)
	resp.AttachmentError = attachmentErr
	return &resp, nil
}

func (s *postService) DeletePost(ctx context.Context, principal policy.Principal, postID uuid.UUID) error {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return err
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := policy.CanManageBlog(principal, &post.Blog).Err(); err != nil {
		return fmt.Errorf("only the blog owner can delete this post: %w", err)
	}

	filenames, err := s.postRepo.Delete(ctx, post.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.attachments.RemoveFiles(ctx, filenames)

	log.Info().
		Str("post_id", post.ID.String()).
		Int("files", len(filenames)).
		Msg("post deleted")
	return nil
}

func (s *postService) GetPost(ctx context.Context, principal policy.Principal, postID uuid.UUID) (*postDto.PostDetailResponse, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	commentResponses := make([]commentDto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentResponses = append(commentResponses, commentDto.NewCommentResponse(&comments[i]))
	}

	likeCount, err := s.likeRepo.Count(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	likedByMe := false
	if principal.IsAuthenticated() {
		likedByMe, err = s.likeRepo.HasLiked(ctx, principal.UserID, post.ID)
		if err != nil {
			return nil, err
		}
	}

	prev, next, err := s.postRepo.Neighbors(ctx, post)
	if err != nil {
		return nil, err
	}

	return &postDto.PostDetailResponse{
		PostResponse: mapToResponse(post),
		Comments:     commentResponses,
		LikeCount:    likeCount,
		LikedByMe:    likedByMe,
		CanManage:    policy.CanManageBlog(principal, &post.Blog).Allowed(),
		Prev:         postLink(prev),
		Next:         postLink(next),
	}, nil
}

func (s *postService) ListPostsByBlog(ctx context.Context, blogID uuid.UUID) ([]postDto.PostSummary, error) {
	posts, err := s.postRepo.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}

	summaries := make([]postDto.PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, mapToSummary(&posts[i], false))
	}
	return summaries, nil
}

func (s *postService) ListPostsByTag(ctx context.Context, name string) ([]postDto.PostSummary, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if _, err := s.tagRepo.FindByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	posts, err := s.postRepo.ListByTag(ctx, name)
	if err != nil {
		return nil, err
	}

	summaries := make([]postDto.PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, mapToSummary(&posts[i], true))
	}
	return summaries, nil
}

func (s *postService) findPost(ctx context.Context, postID uuid.UUID) (*entity.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}

func normalizeRequest(req *postDto.PostRequest) ([]string, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	return tag.ParseTagList(req.Tags)
}
