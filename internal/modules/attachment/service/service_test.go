package attachment

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"anoa.com/blogspace/internal/entity"
	attachmentRepo "anoa.com/blogspace/internal/modules/attachment/repository"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	"anoa.com/blogspace/internal/testutils"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (AttachmentService, *gorm.DB, string) {
	t.Helper()

	db := testutils.SetupTestDB(t)
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	svc := NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), postRepo.NewPostRepository(db), files)
	return svc, db, dir
}

func file(name, contentType, body string) *dto.UploadFile {
	return &dto.UploadFile{Reader: strings.NewReader(body), FileName: name, ContentType: contentType, Size: int64(len(body))}
}

func TestStoreWithoutFileIsNoop(t *testing.T) {
	svc, db, dir := newTestService(t)

	got, err := svc.Store(context.Background(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Store(context.Background(), uuid.New(), uuid.New(), file("  ", "", ""))
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Attachment{}, ""))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreRemovesFileWhenInsertFails(t *testing.T) {
	svc, db, dir := newTestService(t)

	// unknown post violates the foreign key
	_, err := svc.Store(context.Background(), uuid.New(), uuid.New(), file("photo.png", "image/png", "png"))
	require.Error(t, err)

	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Attachment{}, ""))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, db, dir := newTestService(t)

	alice := testutils.CreateTestUser(t, db, "alice")
	bob := testutils.CreateTestUser(t, db, "bob")
	admin := testutils.CreateTestUser(t, db, "root", testutils.WithRole(entity.RoleAdmin))
	post := testutils.CreateTestPost(t, db, testutils.CreateTestBlog(t, db, alice, "Travel"), "Trip 1")

	_, err := svc.Upload(ctx, testutils.PrincipalOf(bob), post.ID, file("a.png", "image/png", "x"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Upload(ctx, testutils.PrincipalOf(alice), uuid.New(), file("a.png", "image/png", "x"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	first, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file("report.pdf", "application/pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", first.Filename)
	assert.Equal(t, entity.FileTypeDocument, first.FileType)
	assert.EqualValues(t, 4, first.Size)

	second, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file("report.pdf", "application/pdf", "%PDF-2"))
	require.NoError(t, err)
	assert.Equal(t, "report_1.pdf", second.Filename)

	assert.ErrorIs(t, svc.Delete(ctx, testutils.PrincipalOf(bob), first.ID), apperror.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, testutils.PrincipalOf(alice), first.ID))
	_, err = os.Stat(filepath.Join(dir, "report.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.Delete(ctx, testutils.PrincipalOf(alice), first.ID), apperror.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, testutils.PrincipalOf(admin), second.ID))
	assert.EqualValues(t, 0, testutils.Count(t, db, &entity.Attachment{}, ""))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	svc, db, dir := newTestService(t)

	alice := testutils.CreateTestUser(t, db, "alice")
	post := testutils.CreateTestPost(t, db, testutils.CreateTestBlog(t, db, alice, "Travel"), "Trip 1")

	stored, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file("My Holiday!.JPG", "", "jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "My_Holiday.jpg", stored.Filename)

	served, err := svc.Open(ctx, stored.Filename)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", served.MimeType)
	assert.Equal(t, "My Holiday!.JPG", served.Name)
	assert.Equal(t, filepath.Join(dir, "My_Holiday.jpg"), served.Path)

	// files without a row, such as an upload still being written, are hidden
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("hi"), 0o644))
	_, err = svc.Open(ctx, "stray.txt")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	for _, name := range []string{"missing.png", "../../etc/passwd", "..", "a/b.png", ""} {
		_, err := svc.Open(ctx, name)
		assert.ErrorIs(t, err, apperror.ErrNotFound, name)
	}
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "photo.png", "photo.png"},
		{"directory part", `C:\Users\me\photo.png`, "photo.png"},
		{"ascii over limit", strings.Repeat("a", 300) + ".png", strings.Repeat("a", 255)},
		{"cyrillic over limit", strings.Repeat("ф", 130) + ".png", strings.Repeat("ф", 127)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := originalName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), 255)
		})
	}
}

func TestUploadLongName(t *testing.T) {
	ctx := context.Background()
	svc, db, dir := newTestService(t)

	alice := testutils.CreateTestUser(t, db, "alice")
	post := testutils.CreateTestPost(t, db, testutils.CreateTestBlog(t, db, alice, "Travel"), "Trip 1")
	name := strings.Repeat("отпуск", 40) + ".png"

	first, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file(name, "image/png", "one"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file(name, "image/png", "two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	for _, a := range []*dto.AttachmentResponse{first, second} {
		assert.LessOrEqual(t, len(a.Filename), 255)
		assert.True(t, utf8.ValidString(a.OriginalFilename))
		assert.LessOrEqual(t, len(a.OriginalFilename), 255)
		_, err := os.Stat(filepath.Join(dir, a.Filename))
		assert.NoError(t, err)
	}

	long := strings.Repeat("a", 300) + ".png"
	stored, err := svc.Upload(ctx, testutils.PrincipalOf(alice), post.ID, file(long, "image/png", "three"))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 200)+".png", stored.Filename)
}
