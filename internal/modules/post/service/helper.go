package post

import (
	"errors"

	"anoa.com/blogspace/internal/entity"
	postDto "anoa.com/blogspace/internal/modules/post/dto"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/content"
	"anoa.com/blogspace/pkg/dto"
	"github.com/rs/zerolog/log"
)

func mapToResponse(post *entity.Post) postDto.PostResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(post.Attachments))
	for i := range post.Attachments {
		attachments = append(attachments, dto.NewAttachmentResponse(&post.Attachments[i]))
	}

	return postDto.PostResponse{
		ID:          post.ID,
		Blog:        blogRef(&post.Blog),
		Title:       post.Title,
		Content:     post.Content,
		ContentHTML: content.RenderText(post.Content),
		Tags:        tagNames(post.Tags),
		Attachments: attachments,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func mapToSummary(post *entity.Post, withBlog bool) postDto.PostSummary {
	summary := postDto.PostSummary{
		ID:        post.ID,
		BlogID:    post.BlogID,
		Title:     post.Title,
		Tags:      tagNames(post.Tags),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if withBlog {
		ref := blogRef(&post.Blog)
		summary.Blog = &ref
	}
	return summary
}

func blogRef(blog *entity.Blog) postDto.BlogRef {
	return postDto.BlogRef{
		ID:    blog.ID,
		Title: blog.Title,
		Owner: dto.NewAuthorResponse(&blog.User),
	}
}

func tagNames(tags []entity.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}

func postLink(post *entity.Post) *postDto.PostLink {
	if post == nil {
		return nil
	}
	return &postDto.PostLink{ID: post.ID, Title: post.Title}
}

// attachmentErrorMessage is what the client sees when the file sent with a
// post was not stored. Input problems are reported as is; anything else is
// logged and summarized.
func attachmentErrorMessage(err error) string {
	if errors.Is(err, apperror.ErrInvalidInput) {
		return err.Error()
	}
	log.Error().Err(err).Msg("failed to store post attachment")
	return "the attachment could not be saved"
}
