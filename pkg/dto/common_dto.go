package dto

import (
	"io"
	"mime/multipart"
	"time"

	"anoa.com/blogspace/internal/entity"
	"github.com/google/uuid"
)

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
}

func NewAuthorResponse(u *entity.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in page 1 and a limit of 20 when unset.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	return q
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

func NewPaginationMeta(q PageQuery, total int64) PaginationMeta {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return PaginationMeta{
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       q.Limit,
	}
}

type AttachmentResponse struct {
	ID               uuid.UUID `json:"id"`
	URL              string    `json:"url"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	FileType         string    `json:"file_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}

// UploadsPath is the public prefix stored files are served under.
const UploadsPath = "/uploads/"

func NewAttachmentResponse(a *entity.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:               a.ID,
		URL:              UploadsPath + a.Filename,
		Filename:         a.Filename,
		OriginalFilename: a.OriginalFilename,
		MimeType:         a.MimeType,
		FileType:         a.FileType,
		Size:             a.Size,
		CreatedAt:        a.CreatedAt,
	}
}

// UploadFile is a file received from a multipart form, detached from the
// request so services can stay transport agnostic.
type UploadFile struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// OpenUpload opens a multipart file. The returned func closes it.
func OpenUpload(header *multipart.FileHeader) (*UploadFile, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &UploadFile{
		Reader:      f,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, func() { _ = f.Close() }, nil
}
