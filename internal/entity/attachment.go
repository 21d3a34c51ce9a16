package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FileTypeImage    = "image"
	FileTypeAudio    = "audio"
	FileTypeVideo    = "video"
	FileTypeDocument = "document"
	FileTypeOther    = "other"
)

type Attachment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID           uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	Post             *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename         string    `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	MimeType         string    `gorm:"size:100;not null" json:"mime_type"`
	FileType         string    `gorm:"size:20;not null" json:"file_type"`
	Size             int64     `gorm:"not null;default:0" json:"size"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
