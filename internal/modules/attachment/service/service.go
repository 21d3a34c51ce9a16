package attachment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/blogspace/internal/entity"
	attachmentRepo "anoa.com/blogspace/internal/modules/attachment/repository"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxOriginalNameBytes = 255

// ServedFile is a stored upload ready to be streamed to a client.
type ServedFile struct {
	Path     string
	MimeType string
	Name     string
}

type AttachmentService interface {
	// Upload attaches a file to an existing post on behalf of the blog owner.
	Upload(ctx context.Context, principal policy.Principal, postID uuid.UUID, file *dto.UploadFile) (*dto.AttachmentResponse, error)
	// Store runs the upload pipeline for a post the caller has already
	// authorized. A nil file or one without a name is a no-op and returns
	// nil, nil.
	Store(ctx context.Context, userID, postID uuid.UUID, file *dto.UploadFile) (*entity.Attachment, error)
	Delete(ctx context.Context, principal policy.Principal, attachmentID uuid.UUID) error
	Open(ctx context.Context, filename string) (*ServedFile, error)
	// RemoveFiles unlinks stored files after the rows referencing them are
	// gone. Failures are logged, not returned.
	RemoveFiles(ctx context.Context, filenames []string)
}

type attachmentService struct {
	repo     attachmentRepo.AttachmentRepository
	postRepo postRepo.PostRepository
	files    storage.FileStorage
}

func NewAttachmentService(repo attachmentRepo.AttachmentRepository, postRepo postRepo.PostRepository, files storage.FileStorage) AttachmentService {
	return &attachmentService{
		repo:     repo,
		postRepo: postRepo,
		files:    files,
	}
}

func (s *attachmentService) Upload(ctx context.Context, principal policy.Principal, postID uuid.UUID, file *dto.UploadFile) (*dto.AttachmentResponse, error) {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return nil, err
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := policy.CanManageBlog(principal, &post.Blog).Err(); err != nil {
		return nil, fmt.Errorf("only the blog owner can add attachments: %w", err)
	}

	if file == nil || strings.TrimSpace(file.FileName) == "" {
		return nil, fmt.Errorf("file is required: %w", apperror.ErrInvalidInput)
	}

	attachment, err := s.Store(ctx, principal.UserID, post.ID, file)
	if err != nil {
		return nil, err
	}

	resp := dto.NewAttachmentResponse(attachment)
	return &resp, nil
}

func (s *attachmentService) Store(ctx context.Context, userID, postID uuid.UUID, file *dto.UploadFile) (*entity.Attachment, error) {
	if file == nil || strings.TrimSpace(file.FileName) == "" {
		return nil, nil
	}

	mimeType, fileType, err := Classify(file.FileName, file.ContentType)
	if err != nil {
		return nil, err
	}

	stored, size, err := s.files.Save(file.FileName, file.Reader)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	attachment := &entity.Attachment{
		PostID:           postID,
		UserID:           userID,
		Filename:         stored,
		OriginalFilename: originalName(file.FileName),
		MimeType:         mimeType,
		FileType:         fileType,
		Size:             size,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		if rmErr := s.files.Remove(stored); rmErr != nil {
			log.Error().Err(rmErr).Str("filename", stored).Msg("failed to remove file after insert failure")
		}
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	log.Info().
		Str("attachment_id", attachment.ID.String()).
		Str("post_id", postID.String()).
		Str("filename", stored).
		Int64("size", size).
		Msg("attachment stored")

	return attachment, nil
}

func (s *attachmentService) Delete(ctx context.Context, principal policy.Principal, attachmentID uuid.UUID) error {
	if err := policy.RequireAuthenticated(principal).Err(); err != nil {
		return err
	}

	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("attachment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	post, err := s.postRepo.FindByID(ctx, attachment.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := policy.CanDeleteAttachment(principal, &post.Blog).Err(); err != nil {
		return fmt.Errorf("not allowed to delete this attachment: %w", err)
	}

	if err := s.repo.Delete(ctx, attachment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("attachment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.RemoveFiles(ctx, []string{attachment.Filename})
	return nil
}

// Open serves only files that have an attachment row. The row is inserted
// after the payload is fully written, so a file still being uploaded is
// never exposed.
func (s *attachmentService) Open(ctx context.Context, filename string) (*ServedFile, error) {
	path, err := s.files.Locate(filename)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) || errors.Is(err, storage.ErrFileNotFound) {
			return nil, fmt.Errorf("file not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	attachment, err := s.repo.FindByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("file not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &ServedFile{
		Path:     path,
		MimeType: attachment.MimeType,
		Name:     attachment.OriginalFilename,
	}, nil
}

func (s *attachmentService) RemoveFiles(ctx context.Context, filenames []string) {
	for _, name := range filenames {
		if err := s.files.Remove(name); err != nil {
			log.Error().Err(err).Str("filename", name).Msg("failed to remove attachment file")
		}
	}
}

// originalName keeps the client's file name for display, without any
// directory part. Long names are cut at 255 bytes on a rune boundary.
func originalName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if len(name) <= maxOriginalNameBytes {
		return name
	}
	cut := maxOriginalNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
