package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/blogspace/internal/config"
	"anoa.com/blogspace/internal/testutils"
	"anoa.com/blogspace/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestClient(t *testing.T) *client {
	t.Helper()

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	srv := NewServer(Deps{
		Config: &config.Config{
			AppEnv:         "test",
			SessionSecret:  "test-secret",
			SessionTTL:     time.Hour,
			MaxUploadBytes: 1 << 20,
		},
		DB:    testutils.SetupTestDB(t),
		Files: files,
	})
	return &client{t: t, handler: srv.Handler()}
}

func (c *client) do(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var body map[string]interface{}
	if json.Valid(w.Body.Bytes()) {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func (c *client) json(method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) login(username, password string) {
	c.t.Helper()

	w, _ := c.json(http.MethodPost, "/api/auth/register", map[string]string{
		"username":         username,
		"email":            username + "@example.test",
		"password":         password,
		"confirm_password": password,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	w, body := c.json(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    username + "@example.test",
		"password": password,
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	c.token = body["token"].(string)
	require.NotEmpty(c.t, c.token)
}

func TestHealthz(t *testing.T) {
	c := newTestClient(t)

	w, body := c.json(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestSiteStats(t *testing.T) {
	c := newTestClient(t)
	c.login("alice", "secret1")

	w, body := c.json(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total_users"])
	assert.EqualValues(t, 0, body["total_posts"])
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	c := newTestClient(t)

	w, body := c.json(http.MethodPost, "/api/blogs", map[string]string{"title": "Travel", "description": "Trips"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/api/auth/login", body["redirect"])
}

func TestBlogPostFlow(t *testing.T) {
	c := newTestClient(t)
	c.login("alice", "secret1")

	w, blog := c.json(http.MethodPost, "/api/blogs", map[string]string{"title": "Travel", "description": "Trips"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blogID := blog["id"].(string)

	w, post := c.json(http.MethodPost, "/api/blogs/"+blogID+"/posts", map[string]string{
		"title":   "Trip 1",
		"content": "Sunny <b>days</b>",
		"tags":    "Beach, sun",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	postID := post["id"].(string)
	assert.ElementsMatch(t, []interface{}{"beach", "sun"}, post["tags"])

	w, detail := c.json(http.MethodGet, "/api/posts/"+postID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, detail["can_manage"])
	assert.NotContains(t, detail["content_html"], "<b>")

	w, like := c.json(http.MethodPost, "/api/posts/"+postID+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, like["liked"])
	assert.EqualValues(t, 1, like["count"])

	w, _ = c.json(http.MethodPost, "/api/posts/"+postID+"/comments", map[string]string{"content": "first!"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, tagged := c.json(http.MethodGet, "/api/tags/beach/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, tagged["data"], 1)

	// Someone else can read but not manage.
	token := c.token
	c.token = ""
	w, detail = c.json(http.MethodGet, "/api/posts/"+postID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, detail["can_manage"])
	assert.Len(t, detail["comments"], 1)
	assert.EqualValues(t, 1, detail["like_count"])

	c.login("bob", "secret2")
	w, _ = c.json(http.MethodDelete, "/api/posts/"+postID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c.token = token
	w, _ = c.json(http.MethodDelete, "/api/posts/"+postID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodGet, "/api/posts/"+postID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttachmentUploadAndServe(t *testing.T) {
	c := newTestClient(t)
	c.login("alice", "secret1")

	w, blog := c.json(http.MethodPost, "/api/blogs", map[string]string{"title": "Notes", "description": "Docs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "With file"))
	require.NoError(t, mw.WriteField("content", "see attached"))
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello attachment"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/blogs/"+blog["id"].(string)+"/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, post := c.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Nil(t, post["attachment_error"])

	attachments := post["attachments"].([]interface{})
	require.Len(t, attachments, 1)
	url := attachments[0].(map[string]interface{})["url"].(string)
	assert.Equal(t, "/uploads/notes.txt", url)

	c.token = ""
	w, _ = c.do(httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello attachment", w.Body.String())

	w, _ = c.do(httptest.NewRequest(http.MethodGet, "/uploads/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	c := newTestClient(t)
	c.login("alice", "secret1")

	w, _ := c.json(http.MethodGet, "/api/profile/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodGet, "/api/profile/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
