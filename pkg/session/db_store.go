package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the sessions table row used by the database-backed store.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Record) TableName() string {
	return "sessions"
}

type dbStore struct {
	db *gorm.DB
}

// NewDBStore keeps sessions in the main database. Used when no redis is
// configured.
func NewDBStore(db *gorm.DB) Store {
	return &dbStore{db: db}
}

func (s *dbStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error) {
	sess, err := newSession(userID, ttl)
	if err != nil {
		return nil, err
	}

	rec := Record{ID: sess.ID, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *dbStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if !rec.ExpiresAt.After(time.Now()) {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	return &Session{ID: rec.ID, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *dbStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error
}

func (s *dbStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Record{}).Error
}
