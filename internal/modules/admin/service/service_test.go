package admin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"anoa.com/blogspace/internal/entity"
	attachmentRepo "anoa.com/blogspace/internal/modules/attachment/repository"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	userRepo "anoa.com/blogspace/internal/modules/user/repository"
	"anoa.com/blogspace/internal/testutils"
	"anoa.com/blogspace/pkg/apperror"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/session"
	"anoa.com/blogspace/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (AdminService, *gorm.DB, session.Store, string) {
	t.Helper()

	db := testutils.SetupTestDB(t)
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	sessions := session.NewDBStore(db)
	attachments := attachment.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), postRepo.NewPostRepository(db), files)
	return NewAdminService(userRepo.NewUserRepository(db), sessions, attachments, nil), db, sessions, dir
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, db, _, _ := newTestService(t)

	admin := testutils.CreateTestUser(t, db, "root", testutils.WithRole(entity.RoleAdmin))
	reader := testutils.CreateTestUser(t, db, "alice")
	for i := 0; i < 3; i++ {
		testutils.CreateTestUser(t, db, "")
	}

	_, err := svc.ListUsers(ctx, testutils.PrincipalOf(reader), commonDto.PageQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	page, err := svc.ListUsers(ctx, testutils.PrincipalOf(admin), commonDto.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 5, page.Meta.TotalItems)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.Equal(t, 2, page.Meta.CurrentPage)

	all, err := svc.ListUsers(ctx, testutils.PrincipalOf(admin), commonDto.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 5)
	assert.Equal(t, 20, all.Meta.Limit)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, db, sessions, dir := newTestService(t)

	admin := testutils.CreateTestUser(t, db, "root", testutils.WithRole(entity.RoleAdmin))
	alice := testutils.CreateTestUser(t, db, "alice")
	bob := testutils.CreateTestUser(t, db, "bob")

	travel := testutils.CreateTestBlog(t, db, alice, "Travel")
	food := testutils.CreateTestBlog(t, db, bob, "Food")
	trip := testutils.CreateTestPost(t, db, travel, "Trip 1")
	dinner := testutils.CreateTestPost(t, db, food, "Dinner")

	testutils.CreateTestComment(t, db, dinner, alice, "yum")
	testutils.CreateTestComment(t, db, trip, bob, "nice")
	require.NoError(t, db.Create(&entity.Like{UserID: alice.ID, PostID: dinner.ID}).Error)
	require.NoError(t, db.Create(&entity.Subscription{UserID: alice.ID, BlogID: food.ID}).Error)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sunset.png"), []byte("png"), 0o644))
	require.NoError(t, db.Create(&entity.Attachment{
		PostID: trip.ID, UserID: alice.ID, Filename: "sunset.png",
		OriginalFilename: "sunset.png", MimeType: "image/png", FileType: entity.FileTypeImage,
	}).Error)

	sess, err := sessions.Create(ctx, alice.ID, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteUser(ctx, testutils.PrincipalOf(bob), alice.ID), apperror.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, testutils.PrincipalOf(admin), admin.ID), apperror.ErrInvalidInput)

	require.NoError(t, svc.DeleteUser(ctx, testutils.PrincipalOf(admin), alice.ID))

	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.User{}, "id = ?", alice.ID))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Blog{}, "user_id = ?", alice.ID))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Post{}, "id = ?", trip.ID))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Comment{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Like{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Subscription{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Attachment{}, ""))
	assert.EqualValues(t, 1, testutils.Count(t, db, &entity.Post{}, "id = ?", dinner.ID))

	_, err = sessions.Get(ctx, sess.ID)
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "sunset.png"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, svc.DeleteUser(ctx, testutils.PrincipalOf(admin), alice.ID), apperror.ErrNotFound)
}
