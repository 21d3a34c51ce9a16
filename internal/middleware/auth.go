package middleware

import (
	"context"
	"strings"

	userService "anoa.com/blogspace/internal/modules/user/service"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"

	principalKey = "principal"
	sessionIDKey = "session_id"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userService.Identity, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// OptionalAuth resolves the principal when a valid token is present and
// otherwise continues as anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString != "" {
			if identity, err := m.auth.Authenticate(c.Request.Context(), tokenString); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.ResponseError(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		identity, err := m.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.CanAdminister(GetPrincipal(c)).Err(); err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the acting principal, or the anonymous one when the
// request carries no valid session.
func GetPrincipal(c *gin.Context) policy.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return policy.Anonymous()
	}
	p, ok := v.(policy.Principal)
	if !ok {
		return policy.Anonymous()
	}
	return p
}

func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(sessionIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func setIdentity(c *gin.Context, identity *userService.Identity) {
	c.Set(principalKey, identity.Principal)
	c.Set(sessionIDKey, identity.SessionID)
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
