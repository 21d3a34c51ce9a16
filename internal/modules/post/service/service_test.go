package post

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"anoa.com/blogspace/internal/entity"
	attachmentRepo "anoa.com/blogspace/internal/modules/attachment/repository"
	attachment "anoa.com/blogspace/internal/modules/attachment/service"
	blogRepo "anoa.com/blogspace/internal/modules/blog/repository"
	commentRepo "anoa.com/blogspace/internal/modules/comment/repository"
	likeRepo "anoa.com/blogspace/internal/modules/like/repository"
	postDto "anoa.com/blogspace/internal/modules/post/dto"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	tagRepo "anoa.com/blogspace/internal/modules/tag/repository"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/internal/testutils"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/ratelimiter"
	"anoa.com/blogspace/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	uploadDir   string
	posts       PostService
	attachments attachment.AttachmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutils.SetupTestDB(t)
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	posts := postRepo.NewPostRepository(db)
	attachments := attachment.NewAttachmentService(attachmentRepo.NewAttachmentRepository(db), posts, files)

	svc := NewPostService(
		posts,
		blogRepo.NewBlogRepository(db),
		tagRepo.NewTagRepository(db),
		commentRepo.NewCommentRepository(db),
		likeRepo.NewLikeRepository(db),
		attachments,
		ratelimiter.New(nil),
		Options{},
	)

	return &fixture{db: db, uploadDir: dir, posts: svc, attachments: attachments}
}

func upload(name, contentType, body string) *dto.UploadFile {
	return &dto.UploadFile{
		Reader:      strings.NewReader(body),
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
	}
}

func TestTravelScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	bob := testutils.CreateTestUser(t, f.db, "bob")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")

	created, err := f.posts.CreatePost(ctx, testutils.PrincipalOf(alice), travel.ID, postDto.PostRequest{
		Title:   "Trip 1",
		Content: "Day one\nDay two",
		Tags:    "beach, sun",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sun"}, created.Tags)
	assert.Equal(t, "Travel", created.Blog.Title)
	assert.Equal(t, "alice", created.Blog.Owner.Username)
	assert.Contains(t, created.ContentHTML, "<br")
	assert.Empty(t, created.AttachmentError)

	_, err = f.posts.UpdatePost(ctx, testutils.PrincipalOf(bob), created.ID, postDto.PostRequest{
		Title:   "Hijacked",
		Content: "nope",
	}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.posts.UpdatePost(ctx, testutils.PrincipalOf(alice), created.ID, postDto.PostRequest{
		Title:   "Trip 1",
		Content: "Day one",
		Tags:    "Beach",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, updated.Tags)

	assert.EqualValues(t, 1, testutils.Count(t, f.db, &entity.PostTag{}, "post_id = ?", created.ID))
	assert.EqualValues(t, 2, testutils.Count(t, f.db, &entity.Tag{}, ""), "unused tags are kept")
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")
	valid := postDto.PostRequest{Title: "Trip", Content: "text"}

	tests := []struct {
		name      string
		principal policy.Principal
		req       postDto.PostRequest
		wantErr   error
	}{
		{"anonymous", policy.Anonymous(), valid, apperror.ErrUnauthorized},
		{"blank title", testutils.PrincipalOf(alice), postDto.PostRequest{Title: "   ", Content: "x"}, apperror.ErrInvalidInput},
		{"missing content", testutils.PrincipalOf(alice), postDto.PostRequest{Title: "x"}, apperror.ErrInvalidInput},
		{"title too long", testutils.PrincipalOf(alice), postDto.PostRequest{Title: strings.Repeat("t", 151), Content: "x"}, apperror.ErrInvalidInput},
		{"tag too long", testutils.PrincipalOf(alice), postDto.PostRequest{Title: "x", Content: "x", Tags: strings.Repeat("t", 51)}, apperror.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.CreatePost(ctx, tt.principal, travel.ID, tt.req, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.posts.CreatePost(ctx, testutils.PrincipalOf(alice), alice.ID, valid, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Post{}, ""))
}

func TestCreatePostStoresAttachments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")
	p := testutils.PrincipalOf(alice)

	first, err := f.posts.CreatePost(ctx, p, travel.ID, postDto.PostRequest{Title: "One", Content: "x"},
		upload("photo.png", "image/png", "first"))
	require.NoError(t, err)
	require.Len(t, first.Attachments, 1)
	assert.Equal(t, "photo.png", first.Attachments[0].Filename)
	assert.Equal(t, dto.UploadsPath+"photo.png", first.Attachments[0].URL)

	second, err := f.posts.CreatePost(ctx, p, travel.ID, postDto.PostRequest{Title: "Two", Content: "x"},
		upload("photo.png", "image/png", "second"))
	require.NoError(t, err)
	require.Len(t, second.Attachments, 1)
	assert.Equal(t, "photo_1.png", second.Attachments[0].Filename)
	assert.Equal(t, "photo.png", second.Attachments[0].OriginalFilename)

	for name, want := range map[string]string{"photo.png": "first", "photo_1.png": "second"} {
		served, err := f.attachments.Open(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "image/png", served.MimeType)
		body, err := os.ReadFile(served.Path)
		require.NoError(t, err)
		assert.Equal(t, want, string(body))
	}
}

func TestCreatePostReportsAttachmentError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")

	resp, err := f.posts.CreatePost(ctx, testutils.PrincipalOf(alice), travel.ID,
		postDto.PostRequest{Title: "Tools", Content: "x"},
		upload("setup.exe", "application/octet-stream", "MZ"))
	require.NoError(t, err)

	assert.Contains(t, resp.AttachmentError, ".exe")
	assert.Empty(t, resp.Attachments)
	assert.EqualValues(t, 1, testutils.Count(t, f.db, &entity.Post{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Attachment{}, ""))

	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreatePostRejectsTraversalName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")

	resp, err := f.posts.CreatePost(ctx, testutils.PrincipalOf(alice), travel.ID,
		postDto.PostRequest{Title: "Sneaky", Content: "x"},
		upload("../../etc/passwd", "", "root:x:0:0"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AttachmentError)

	resp, err = f.posts.CreatePost(ctx, testutils.PrincipalOf(alice), travel.ID,
		postDto.PostRequest{Title: "Sneaky 2", Content: "x"},
		upload("../../etc/passwd.txt", "text/plain", "root:x:0:0"))
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "passwd.txt", resp.Attachments[0].Filename)

	_, err = os.Stat(filepath.Join(f.uploadDir, "passwd.txt"))
	assert.NoError(t, err)

	_, err = f.attachments.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletePostRemovesDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	bob := testutils.CreateTestUser(t, f.db, "bob")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")
	p := testutils.PrincipalOf(alice)

	resp, err := f.posts.CreatePost(ctx, p, travel.ID,
		postDto.PostRequest{Title: "Trip 1", Content: "x", Tags: "beach"},
		upload("sunset.jpg", "image/jpeg", "jpeg"))
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 1)

	post := &entity.Post{ID: resp.ID}
	testutils.CreateTestComment(t, f.db, post, bob, "nice")
	require.NoError(t, f.db.Create(&entity.Like{UserID: bob.ID, PostID: resp.ID}).Error)

	assert.ErrorIs(t, f.posts.DeletePost(ctx, testutils.PrincipalOf(bob), resp.ID), apperror.ErrForbidden)

	require.NoError(t, f.posts.DeletePost(ctx, p, resp.ID))

	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Post{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Comment{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Like{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.Attachment{}, ""))
	assert.EqualValues(t, 0, testutils.Count(t, f.db, &entity.PostTag{}, ""))
	assert.EqualValues(t, 1, testutils.Count(t, f.db, &entity.Tag{}, ""))

	_, err = os.Stat(filepath.Join(f.uploadDir, "sunset.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, f.posts.DeletePost(ctx, p, resp.ID), apperror.ErrNotFound)
}

func TestGetPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	bob := testutils.CreateTestUser(t, f.db, "bob")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var posts []*entity.Post
	for i, title := range []string{"Trip 1", "Trip 2", "Trip 3"} {
		post := testutils.CreateTestPost(t, f.db, travel, title)
		require.NoError(t, f.db.Model(post).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
		posts = append(posts, post)
	}
	middle := posts[1]

	testutils.CreateTestComment(t, f.db, middle, bob, "first")
	testutils.CreateTestComment(t, f.db, middle, alice, "second")
	require.NoError(t, f.db.Create(&entity.Like{UserID: bob.ID, PostID: middle.ID}).Error)

	detail, err := f.posts.GetPost(ctx, testutils.PrincipalOf(bob), middle.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.Prev)
	require.NotNil(t, detail.Next)
	assert.Equal(t, "Trip 1", detail.Prev.Title)
	assert.Equal(t, "Trip 3", detail.Next.Title)
	assert.EqualValues(t, 1, detail.LikeCount)
	assert.True(t, detail.LikedByMe)
	assert.False(t, detail.CanManage)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "first", detail.Comments[0].Content)
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)

	anon, err := f.posts.GetPost(ctx, policy.Anonymous(), posts[0].ID)
	require.NoError(t, err)
	assert.Nil(t, anon.Prev)
	assert.Equal(t, "Trip 2", anon.Next.Title)
	assert.False(t, anon.LikedByMe)

	owner, err := f.posts.GetPost(ctx, testutils.PrincipalOf(alice), posts[2].ID)
	require.NoError(t, err)
	assert.True(t, owner.CanManage)
	assert.Nil(t, owner.Next)

	listed, err := f.posts.ListPostsByBlog(ctx, travel.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Trip 3", listed[0].Title)
}

func TestListPostsByTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alice := testutils.CreateTestUser(t, f.db, "alice")
	travel := testutils.CreateTestBlog(t, f.db, alice, "Travel")
	p := testutils.PrincipalOf(alice)

	_, err := f.posts.CreatePost(ctx, p, travel.ID, postDto.PostRequest{Title: "Trip 1", Content: "x", Tags: "beach, sun"}, nil)
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, p, travel.ID, postDto.PostRequest{Title: "Trip 2", Content: "x", Tags: "sun"}, nil)
	require.NoError(t, err)

	beach, err := f.posts.ListPostsByTag(ctx, " Beach ")
	require.NoError(t, err)
	require.Len(t, beach, 1)
	assert.Equal(t, "Trip 1", beach[0].Title)
	require.NotNil(t, beach[0].Blog)
	assert.Equal(t, "Travel", beach[0].Blog.Title)

	sun, err := f.posts.ListPostsByTag(ctx, "sun")
	require.NoError(t, err)
	assert.Len(t, sun, 2)

	_, err = f.posts.ListPostsByTag(ctx, "snow")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
