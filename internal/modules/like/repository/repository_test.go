package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToggle(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutils.CreateTestUser(t, db, "alice")
	post := testutils.CreateTestPost(t, db, testutils.CreateTestBlog(t, db, alice, "Travel"), "Trip 1")

	liked, err := repo.Toggle(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.Toggle(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err := repo.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleConcurrentInsertCountsAsLiked(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutils.CreateTestUser(t, db, "alice")
	post := testutils.CreateTestPost(t, db, testutils.CreateTestBlog(t, db, alice, "Travel"), "Trip 1")

	// Another request inserts the same like between the lookup and the insert.
	var raced bool
	var raceErr error
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_like", func(tx *gorm.DB) {
		like, ok := tx.Statement.Dest.(*entity.Like)
		if !ok || raced {
			return
		}
		raced = true
		raceErr = tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO likes (id, user_id, post_id, created_at) VALUES (?, ?, ?, ?)",
				uuid.New(), like.UserID, like.PostID, time.Now()).Error
	}))

	liked, err := repo.Toggle(ctx, alice.ID, post.ID)
	require.True(t, raced)
	require.NoError(t, raceErr)
	assert.NoError(t, err)
	assert.True(t, liked)
}
