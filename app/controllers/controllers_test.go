package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"firsttime/app/auth"
	"firsttime/app/models"
	"firsttime/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentControllerCreate(t *testing.T) {
	t.Run("adds comment as the caller", func(t *testing.T) {
		env := setupTestEnv(t)
		w := env.do(http.MethodPost, "/api/posts/2/comments", `{"text": "  Basin wrench saved me  "}`, &testUser)

		assert.Equal(t, http.StatusCreated, w.Code)
		var comment models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
		assert.Equal(t, "Basin wrench saved me", comment.Text)
		assert.Equal(t, "Jo", comment.Author)
		assert.Equal(t, testUser.Key, comment.AuthorKey)

		post, err := env.store.Get("2")
		require.NoError(t, err)
		assert.Len(t, post.Comments, 1)
	})

	t.Run("missing post", func(t *testing.T) {
		env := setupTestEnv(t)
		before := env.store.Snapshot()
		w := env.do(http.MethodPost, "/api/posts/missing-id/comments", `{"text": "hi"}`, &testUser)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, before, env.store.Snapshot())
	})

	t.Run("empty text", func(t *testing.T) {
		env := setupTestEnv(t)
		w := env.do(http.MethodPost, "/api/posts/2/comments", `{"text": " "}`, &testUser)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		env := setupTestEnv(t)
		w := env.do(http.MethodPost, "/api/posts/2/comments", `{"text": "hi"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProfileController(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.store.AddPost(ctx, models.PostDraft{
		Title: "Mine", Content: "story", Category: models.CategoryPersonalGrowth,
		Author: "Jo", AuthorKey: testUser.Key,
	})
	require.NoError(t, err)
	_, err = env.store.AddComment(ctx, "1", models.CommentDraft{Author: "Jo", AuthorKey: testUser.Key, Text: "nice"})
	require.NoError(t, err)

	t.Run("show lists authored posts", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/profile", "", &testUser)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp profileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testUser, resp.User)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "Mine", resp.Posts[0].Title)
		assert.Nil(t, resp.Renamed)
	})

	t.Run("update cascades the new name", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/profile", `{"username": "Jo the Brave"}`, &testUser)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "saved", w.Header().Get(DurabilityHeader))

		var resp profileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Jo the Brave", resp.User.DisplayName)
		require.NotNil(t, resp.Renamed)
		assert.Equal(t, 2, *resp.Renamed)
		assert.Equal(t, "Jo the Brave", resp.Posts[0].Author)

		p1, _ := env.store.Get("1")
		assert.Equal(t, "Elena Gomez", p1.Author)
		assert.Equal(t, "TravelBug", p1.Comments[0].Author)
		assert.Equal(t, "Jo the Brave", p1.Comments[1].Author)

		name, ok, _ := env.profiles.DisplayName(ctx, testUser.Key)
		assert.True(t, ok)
		assert.Equal(t, "Jo the Brave", name)
	})

	t.Run("blank name", func(t *testing.T) {
		w := env.do(http.MethodPut, "/api/profile", `{"username": "  "}`, &testUser)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("persistence failure still renames", func(t *testing.T) {
		env.adapter.FailWrites(errors.New("offline"))
		defer env.adapter.FailWrites(nil)

		w := env.do(http.MethodPut, "/api/profile", `{"username": "Jo Again"}`, &testUser)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "failed", w.Header().Get(DurabilityHeader))
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/profile", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPut, "/api/profile", `{"username":"x"}`, nil).Code)
	})
}

func TestSystemController(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("status", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/status", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp statusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, services.StateReady, resp.State)
		assert.False(t, resp.Seeded)
		assert.Equal(t, 3, resp.Posts)
		assert.Equal(t, "mock", resp.Durability.Adapter)
		assert.Equal(t, services.DurabilityIdle, resp.Durability.Status)
	})

	t.Run("config exposes no secrets", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/config", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")

		var resp clientConfig
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.MockAuth)
		assert.Equal(t, "http://localhost:8080/auth/mock-login", resp.LoginURL)
	})

	t.Run("categories", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/categories", "", nil)
		var resp struct {
			All        string   `json:"all"`
			Categories []string `json:"categories"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "All", resp.All)
		assert.Len(t, resp.Categories, len(models.Categories))
	})
}

func TestAuthController(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("mock login issues a usable token", func(t *testing.T) {
		w := env.do(http.MethodPost, "/auth/mock-login", `{"name": "Jo", "email": "jo@example.com"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string          `json:"token"`
			User  models.Identity `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Jo", resp.User.DisplayName)

		id, err := env.auth.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.Key, id.Key)

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("mock login needs a name", func(t *testing.T) {
		w := env.do(http.MethodPost, "/auth/mock-login", `{"name": ""}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login describes mock flow", func(t *testing.T) {
		w := env.do(http.MethodGet, "/auth/login", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"mock":true`)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := env.do(http.MethodGet, "/auth/logout", "", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://localhost:8080/", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}
