package testutils

import (
	"fmt"
	"strings"
	"testing"

	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/internal/policy"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserOption configures test user
type UserOption func(*entity.User)

func WithRole(role entity.Role) UserOption {
	return func(u *entity.User) {
		u.Role = role
	}
}

func WithEmail(email string) UserOption {
	return func(u *entity.User) {
		u.Email = email
	}
}

// WithPassword stores a real bcrypt hash so login paths can be exercised.
func WithPassword(password string) UserOption {
	return func(u *entity.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		u.PasswordHash = string(hash)
	}
}

// CreateTestUser creates a reader named username. An empty username gets a
// unique generated one.
func CreateTestUser(t testing.TB, db *gorm.DB, username string, opts ...UserOption) *entity.User {
	t.Helper()

	if username == "" {
		username = "user_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	}

	u := &entity.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.test", strings.ToLower(username)),
		PasswordHash: "not-a-real-hash",
		Role:         entity.RoleReader,
	}
	for _, opt := range opts {
		opt(u)
	}

	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateTestBlog(t testing.TB, db *gorm.DB, owner *entity.User, title string) *entity.Blog {
	t.Helper()

	b := &entity.Blog{
		UserID:      owner.ID,
		Title:       title,
		Description: title + " description",
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("create blog %s: %v", title, err)
	}
	return b
}

func CreateTestPost(t testing.TB, db *gorm.DB, blog *entity.Blog, title string) *entity.Post {
	t.Helper()

	p := &entity.Post{
		BlogID:  blog.ID,
		Title:   title,
		Content: title + " content",
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}

func CreateTestComment(t testing.TB, db *gorm.DB, post *entity.Post, author *entity.User, content string) *entity.Comment {
	t.Helper()

	c := &entity.Comment{PostID: post.ID, UserID: author.ID, Content: content}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func PrincipalOf(u *entity.User) policy.Principal {
	return policy.Principal{UserID: u.ID, Role: u.Role}
}
