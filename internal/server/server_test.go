package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/reddit-clone/api/internal/config"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

type harness struct {
	t      *testing.T
	db     database.Service
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "api.db"),
	}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.RateLimit.RPS = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := database.New(cfg.Database, logger, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	s := New(cfg, db, logger, prometheus.NewRegistry())
	return &harness{t: t, db: db, router: s.RegisterRoutes()}
}

// do sends body as JSON, or verbatim when it is a string.
func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (h *harness) register(username string) string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    username + "@example.com",
		"password": "secret1",
		"username": username,
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](h.t, w)["token"].(string)
}

func (h *harness) community(token, name string) feed.CommunityView {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/communities", token, gin.H{
		"name":  name,
		"title": "All about " + name,
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[feed.CommunityView](h.t, w)
}

func (h *harness) post(token string, communityID uint, title string) feed.PostView {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/posts", token, gin.H{
		"title":       title,
		"content":     "body of " + title,
		"communityId": communityID,
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[feed.PostView](h.t, w)
}

func (h *harness) comment(token string, postID uint, parentID *uint, content string) *feed.CommentView {
	h.t.Helper()
	body := gin.H{"content": content, "postId": postID}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	w := h.do(http.MethodPost, "/api/comments", token, body)
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*feed.CommentView](h.t, w)
}

func (h *harness) vote(token, path, direction string) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.do(http.MethodPost, path, token, gin.H{"direction": direction})
}

func directionOf(t *testing.T, w *httptest.ResponseRecorder) votes.Direction {
	t.Helper()
	return decode[struct {
		Direction votes.Direction `json:"direction"`
	}](t, w).Direction
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode[map[string]string](t, w)["status"])

	require.NoError(t, h.db.Close())
	w = h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode[map[string]string](t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")
	c := h.community(token, "golang")
	p := h.post(token, c.ID, "hello")
	require.Equal(t, http.StatusOK, h.vote(token, fmt.Sprintf("/api/posts/%d/vote", p.ID), "UP").Code)

	w := h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `reddit_votes_total{action="create",target="post"} 1`)
	assert.Contains(t, body, `route="/api/posts/:id/vote"`)
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")
	assert.NotEmpty(t, token)

	t.Run("duplicate email", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "alice@example.com", "password": "secret1", "username": "alice2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email already registered", decode[map[string]any](t, w)["error"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "other@example.com", "password": "secret1", "username": "alice",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username already taken", decode[map[string]any](t, w)["error"])
	})

	t.Run("validation details", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "not-an-email", "password": "123", "username": "a!",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		details := decode[struct {
			Details map[string]string `json:"details"`
		}](t, w).Details
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "password")
		assert.Contains(t, details, "username")
	})

	t.Run("login", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "alice@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]any](t, w)
		assert.NotEmpty(t, body["token"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.NotContains(t, user, "password")
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "alice@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login with unknown email", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "nobody@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decode[map[string]any](t, w)["username"])

		assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/me", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/me", "garbage", nil).Code)
	})
}

func TestVotePost(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	bob := h.register("bob")
	c := h.community(alice, "golang")
	p := h.post(alice, c.ID, "generics")
	path := fmt.Sprintf("/api/posts/%d/vote", p.ID)

	assert.Equal(t, 0, p.Score)
	assert.Equal(t, votes.None, p.UserVote)

	steps := []struct {
		direction string
		want      votes.Direction
		score     int
	}{
		{"UP", votes.Up, 1},
		{"UP", votes.None, 0},
		{"DOWN", votes.Down, -1},
		{"UP", votes.Up, 1},
	}
	for _, step := range steps {
		w := h.vote(alice, path, step.direction)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, step.want, directionOf(t, w))

		got := decode[feed.PostView](t, h.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), alice, nil))
		assert.Equal(t, step.score, got.Score)
		assert.Equal(t, step.want, got.UserVote)
	}

	require.Equal(t, http.StatusOK, h.vote(bob, path, "DOWN").Code)
	got := decode[feed.PostView](t, h.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), bob, nil))
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, votes.Down, got.UserVote)

	anon := decode[feed.PostView](t, h.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), "", nil))
	assert.Equal(t, votes.None, anon.UserVote)
}

func TestVoteToggleOffRendersNull(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")
	c := h.community(token, "golang")
	p := h.post(token, c.ID, "hello")
	path := fmt.Sprintf("/api/posts/%d/vote", p.ID)

	require.Equal(t, http.StatusOK, h.vote(token, path, "DOWN").Code)
	w := h.vote(token, path, "DOWN")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"direction": null}`, w.Body.String())
}

func TestVoteErrors(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")
	c := h.community(token, "golang")
	p := h.post(token, c.ID, "hello")
	path := fmt.Sprintf("/api/posts/%d/vote", p.ID)

	cases := []struct {
		name   string
		token  string
		path   string
		body   any
		status int
	}{
		{"anonymous", "", path, gin.H{"direction": "UP"}, http.StatusUnauthorized},
		{"invalid token", "garbage", path, gin.H{"direction": "UP"}, http.StatusUnauthorized},
		{"anonymous with bad direction", "", path, gin.H{"direction": "SIDEWAYS"}, http.StatusUnauthorized},
		{"anonymous on missing post", "", "/api/posts/9999/vote", gin.H{"direction": "UP"}, http.StatusUnauthorized},
		{"bad direction", token, path, gin.H{"direction": "SIDEWAYS"}, http.StatusBadRequest},
		{"lowercase direction", token, path, gin.H{"direction": "up"}, http.StatusBadRequest},
		{"missing direction", token, path, gin.H{}, http.StatusBadRequest},
		{"malformed body", token, path, "{not json", http.StatusBadRequest},
		{"non-numeric id", token, "/api/posts/abc/vote", gin.H{"direction": "UP"}, http.StatusBadRequest},
		{"bad direction on missing post", token, "/api/posts/9999/vote", gin.H{"direction": "SIDEWAYS"}, http.StatusBadRequest},
		{"missing post", token, "/api/posts/9999/vote", gin.H{"direction": "UP"}, http.StatusNotFound},
		{"missing comment", token, "/api/comments/9999/vote", gin.H{"direction": "UP"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(http.MethodPost, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]any](t, w), "error")
		})
	}

	got := decode[feed.PostView](t, h.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), token, nil))
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, votes.None, got.UserVote)
}

func TestVotePayloadErrors(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")
	c := h.community(token, "golang")
	p := h.post(token, c.ID, "hello")
	path := fmt.Sprintf("/api/posts/%d/vote", p.ID)

	w := h.do(http.MethodPost, path, token, `{"direction":"UP"`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["error"], "malformed vote payload")

	w = h.do(http.MethodPost, path, token, gin.H{"direction": "SIDEWAYS"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["error"], "must be UP or DOWN")

	w = h.do(http.MethodPost, path, token, gin.H{"direction": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, path, "", `{"direction":"UP"`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJSONFieldsAreCamelCase(t *testing.T) {
	h := newHarness(t)
	token := h.register("alice")

	for _, path := range []string{"/api/me", "/api/users/alice"} {
		body := h.do(http.MethodGet, path, token, nil).Body.String()
		assert.Contains(t, body, `"createdAt"`, path)
		assert.NotContains(t, body, `"created_at"`, path)
	}
}

func TestCommunities(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	bob := h.register("bob")

	c := h.community(alice, "golang")
	assert.Equal(t, int64(1), c.SubscriberCount)
	assert.True(t, c.IsSubscribed)
	h.community(alice, "rustlang")

	t.Run("duplicate name", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/communities", alice, gin.H{"name": "golang", "title": "Again"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid name", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/communities", alice, gin.H{"name": "Go Lang", "title": "Spaces"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"name"`)
	})

	t.Run("anonymous create", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/communities", "", gin.H{"name": "anon", "title": "Anonymous"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("search", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/communities?search=GOL", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]feed.CommunityView](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, "golang", list[0].Name)
	})

	t.Run("subscribe toggles", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/communities/golang/subscribe", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subscribed": true}`, w.Body.String())

		view := decode[feed.CommunityView](t, h.do(http.MethodGet, "/api/communities/golang", bob, nil))
		assert.Equal(t, int64(2), view.SubscriberCount)
		assert.True(t, view.IsSubscribed)

		w = h.do(http.MethodPost, "/api/communities/golang/subscribe", bob, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subscribed": false}`, w.Body.String())
	})

	t.Run("unknown community", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/communities/nope", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/communities/nope/subscribe", bob, nil).Code)
	})
}

func TestPosts(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	bob := h.register("bob")
	golang := h.community(alice, "golang")
	rust := h.community(alice, "rustlang")

	first := h.post(alice, golang.ID, "first")
	second := h.post(bob, golang.ID, "second")
	h.post(alice, rust.ID, "elsewhere")

	t.Run("missing community", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/posts", alice, gin.H{"title": "lost", "communityId": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("kind", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/posts", alice, gin.H{
			"title": "a link", "linkUrl": "https://go.dev", "communityId": golang.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "link", decode[feed.PostView](t, w).Kind)
		assert.Equal(t, "text", first.Kind)
	})

	t.Run("list by community newest first", func(t *testing.T) {
		w := h.do(http.MethodGet, fmt.Sprintf("/api/posts?communityId=%d&limit=2", golang.ID), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]feed.PostView](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, "a link", list[0].Title)
		assert.Equal(t, second.ID, list[1].ID)
		assert.Equal(t, "golang", list[1].Community.Name)
		assert.Equal(t, "bob", list[1].Author.Username)
	})

	t.Run("bad query", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/posts?limit=lots", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/posts/abc", "", nil).Code)
	})

	t.Run("update", func(t *testing.T) {
		path := fmt.Sprintf("/api/posts/%d", first.ID)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, bob, gin.H{"title": "stolen"}).Code)

		w := h.do(http.MethodPut, path, alice, gin.H{"title": "first, edited"})
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[feed.PostView](t, w)
		assert.Equal(t, "first, edited", got.Title)
		assert.Equal(t, "body of first", got.Content)
	})

	t.Run("delete removes comments and votes", func(t *testing.T) {
		path := fmt.Sprintf("/api/posts/%d", first.ID)
		root := h.comment(bob, first.ID, nil, "nice")
		require.Equal(t, http.StatusOK, h.vote(bob, path+"/vote", "UP").Code)
		require.Equal(t, http.StatusOK, h.vote(alice, fmt.Sprintf("/api/comments/%d/vote", root.ID), "UP").Code)

		assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, bob, nil).Code)
		assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, path, alice, nil).Code)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, "", nil).Code)

		var count int64
		require.NoError(t, h.db.GetDB().Table("votes").Count(&count).Error)
		assert.Zero(t, count)
		assert.Equal(t, http.StatusNotFound, h.vote(alice, fmt.Sprintf("/api/comments/%d/vote", root.ID), "UP").Code)
	})
}

func TestComments(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	bob := h.register("bob")
	c := h.community(alice, "golang")
	p := h.post(alice, c.ID, "threads")
	other := h.post(alice, c.ID, "another")

	older := h.comment(alice, p.ID, nil, "older root")
	newer := h.comment(bob, p.ID, nil, "newer root")
	reply := h.comment(bob, p.ID, &older.ID, "reply")
	h.comment(alice, p.ID, &reply.ID, "nested reply")
	foreign := h.comment(alice, other.ID, nil, "on another post")

	t.Run("parent on another post", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/comments", bob, gin.H{
			"content": "mismatch", "postId": p.ID, "parentId": foreign.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing parent", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/comments", bob, gin.H{
			"content": "orphan", "postId": p.ID, "parentId": 9999,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing post", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/comments", bob, gin.H{"content": "lost", "postId": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("tree", func(t *testing.T) {
		require.Equal(t, http.StatusOK, h.vote(alice, fmt.Sprintf("/api/comments/%d/vote", reply.ID), "DOWN").Code)

		w := h.do(http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", p.ID), alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		tree := decode[[]*feed.CommentView](t, w)
		require.Len(t, tree, 2)
		assert.Equal(t, newer.ID, tree[0].ID)
		assert.Equal(t, older.ID, tree[1].ID)

		require.Len(t, tree[1].Replies, 1)
		got := tree[1].Replies[0]
		assert.Equal(t, reply.ID, got.ID)
		assert.Equal(t, -1, got.Score)
		assert.Equal(t, votes.Down, got.UserVote)
		assert.Len(t, got.Replies, 1)
	})

	t.Run("postId required", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/comments", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/comments?postId=9999", "", nil).Code)
	})

	t.Run("update", func(t *testing.T) {
		path := fmt.Sprintf("/api/comments/%d", newer.ID)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, alice, gin.H{"content": "nope"}).Code)

		w := h.do(http.MethodPut, path, bob, gin.H{"content": "edited"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "edited", decode[*feed.CommentView](t, w).Content)
	})

	t.Run("delete removes the subtree", func(t *testing.T) {
		path := fmt.Sprintf("/api/comments/%d", older.ID)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, bob, nil).Code)

		w := h.do(http.MethodDelete, path, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 3, decode[map[string]any](t, w)["deleted"])

		tree := decode[[]*feed.CommentView](t, h.do(http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", p.ID), "", nil))
		require.Len(t, tree, 1)
		assert.Equal(t, newer.ID, tree[0].ID)

		post := decode[feed.PostView](t, h.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), "", nil))
		assert.Equal(t, int64(1), post.CommentCount)
	})
}

func TestUsers(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	bob := h.register("bob")
	c := h.community(alice, "golang")
	h.post(alice, c.ID, "mine")

	w := h.do(http.MethodGet, "/api/users/alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[struct {
		User  map[string]any  `json:"user"`
		Posts []feed.PostView `json:"posts"`
	}](t, w)
	assert.Equal(t, "alice", profile.User["username"])
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "mine", profile.Posts[0].Title)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/users/nobody", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, "/api/users/alice", bob, gin.H{"bio": "hijacked"}).Code)

	w = h.do(http.MethodPut, "/api/users/alice", alice, gin.H{"bio": "gopher"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gopher", decode[map[string]any](t, w)["bio"])
}

func TestCORS(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
