package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anoa.com/blogspace/internal/entity"
	userService "anoa.com/blogspace/internal/modules/user/service"
	"anoa.com/blogspace/internal/policy"
	"anoa.com/blogspace/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	tokens map[string]policy.Principal
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*userService.Identity, error) {
	p, ok := f.tokens[token]
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return &userService.Identity{Principal: p, SessionID: uuid.New()}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, policy.Principal, policy.Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reader := policy.Principal{UserID: uuid.New(), Role: entity.RoleReader}
	admin := policy.Principal{UserID: uuid.New(), Role: entity.RoleAdmin}
	m := NewAuthMiddleware(&fakeAuthenticator{tokens: map[string]policy.Principal{
		"reader-token": reader,
		"admin-token":  admin,
	}})

	whoami := func(c *gin.Context) {
		p := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID.String(), "authenticated": p.IsAuthenticated()})
	}

	r := gin.New()
	r.GET("/optional", m.OptionalAuth(), whoami)
	r.GET("/required", m.RequireAuth(), whoami)
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), whoami)
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		buf := make([]byte, 64)
		if _, err := c.Request.Body.Read(buf); err != nil && !strings.Contains(err.Error(), "EOF") {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r, reader, admin
}

func doRequest(r http.Handler, method, path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func TestRequireAuth(t *testing.T) {
	r, reader, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/required", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CategoryAuth, body["category"])
	assert.Equal(t, "/api/auth/login", body["redirect"])

	w = doRequest(r, http.MethodGet, "/required", bearer("bogus"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/required", bearer("reader-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), reader.UserID.String())

	w = doRequest(r, http.MethodGet, "/required", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "reader-token"})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r, reader, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/optional", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = doRequest(r, http.MethodGet, "/optional", bearer("bogus"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = doRequest(r, http.MethodGet, "/optional", bearer("reader-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), reader.UserID.String())
}

func TestRequireAdmin(t *testing.T) {
	r, _, admin := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/admin", bearer("reader-token"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/admin", bearer("admin-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), admin.UserID.String())
}

func TestBodyLimitRejectsDeclaredOversize(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 32)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
