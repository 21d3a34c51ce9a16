// Package policy decides who may do what. Every function is pure: the
// caller passes the acting principal and the target explicitly.
package policy

import (
	"anoa.com/blogspace/internal/entity"
	"anoa.com/blogspace/pkg/apperror"
	"github.com/google/uuid"
)

type Principal struct {
	UserID uuid.UUID
	Role   entity.Role
}

func Anonymous() Principal {
	return Principal{}
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}

func (p Principal) IsAdmin() bool {
	if !p.IsAuthenticated() {
		return false
	}
	switch p.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleReader:
		return false
	}
	// Roles are parsed before a principal is built; anything else denies.
	return false
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Err maps a denial onto the shared error sentinels; Allow maps to nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return apperror.ErrUnauthorized
	default:
		return apperror.ErrForbidden
	}
}

func RequireAuthenticated(p Principal) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	return Allow
}

// CanManageBlog covers editing and deleting the blog and creating,
// editing or deleting posts in it. Only the owner qualifies.
func CanManageBlog(p Principal, blog *entity.Blog) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	if blog.UserID == p.UserID {
		return Allow
	}
	return DenyForbidden
}

// CanDeleteComment allows the comment author, the owner of the blog the
// comment lives in, or an admin.
func CanDeleteComment(p Principal, comment *entity.Comment, blog *entity.Blog) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	if comment.UserID == p.UserID || blog.UserID == p.UserID || p.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}

func CanDeleteAttachment(p Principal, blog *entity.Blog) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	if blog.UserID == p.UserID || p.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}

// CanSubscribe rejects anonymous users and the blog's own owner.
func CanSubscribe(p Principal, blog *entity.Blog) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	if blog.UserID == p.UserID {
		return DenyForbidden
	}
	return Allow
}

func CanAdminister(p Principal) Decision {
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}
	if p.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}
