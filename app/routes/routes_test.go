package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firsttime/app/auth"
	"firsttime/app/config"
	"firsttime/app/models"
	"firsttime/app/repositories"
	"firsttime/app/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router *mux.Router
	store  *services.PostStore
	db     *badger.DB
}

func setupTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	db := setupTestDB(t)

	store := services.NewPostStore(repositories.NewLocalAdapter(db))
	store.Load(context.Background())

	authenticator, err := auth.New(cfg)
	require.NoError(t, err)

	identities := services.NewIdentityService(store, repositories.NewBadgerProfileStore(db), nil)
	router := SetupRoutes(Dependencies{
		Config:     cfg,
		Store:      store,
		Identities: identities,
		Auth:       authenticator,
		Version:    "test",
	})
	return &testApp{router: router, store: store, db: db}
}

func mockConfig() *config.Config {
	return &config.Config{PublicURL: "http://localhost:8080", MockAuthSecret: "routes-secret"}
}

func (a *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, name string) (string, models.Identity) {
	t.Helper()
	w := a.request(http.MethodPost, "/auth/mock-login", `{"name": "`+name+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string          `json:"token"`
		User  models.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User
}

func TestSeededStartup(t *testing.T) {
	app := setupApp(t, mockConfig())

	w := app.request(http.MethodGet, "/api/status", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"state":"ready"`)
	assert.Contains(t, w.Body.String(), `"seeded":true`)

	// the seed was written through to badger
	stored, err := repositories.NewLocalAdapter(app.db).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestPostLifecycle(t *testing.T) {
	app := setupApp(t, mockConfig())
	token, user := app.login(t, "Mara")

	w := app.request(http.MethodPost, "/api/posts", `{
		"title": "First time at a pottery wheel",
		"content": "Clay everywhere.",
		"category": "Personal Growth",
		"difficulty": 2
	}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "saved", w.Header().Get("X-Durability"))

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "Mara", post.Author)
	assert.Equal(t, user.Key, post.AuthorKey)

	w = app.request(http.MethodPost, "/api/posts/"+post.ID+"/comments", `{"text": "Keep your elbows in"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.request(http.MethodPost, "/api/posts/"+post.ID+"/feature", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodGet, "/api/posts", "", "")
	var view struct {
		Posts    []models.Post `json:"posts"`
		Featured *models.Post  `json:"featured"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Posts, 4)
	assert.Equal(t, post.ID, view.Posts[0].ID)
	assert.Equal(t, post.ID, view.Featured.ID)
	assert.Len(t, view.Posts[0].Comments, 1)

	// a fresh store over the same database sees every write
	reloaded := services.NewPostStore(repositories.NewLocalAdapter(app.db))
	reloaded.Load(context.Background())
	assert.False(t, reloaded.Seeded())
	got, err := reloaded.Get(post.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)
	assert.Len(t, got.Comments, 1)

	w = app.request(http.MethodDelete, "/api/posts/"+post.ID, "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, app.store.Snapshot(), 3)
}

func TestProfileRenameFlow(t *testing.T) {
	app := setupApp(t, mockConfig())
	token, _ := app.login(t, "Mara")

	w := app.request(http.MethodPost, "/api/posts", `{"title": "t", "content": "c", "category": "Travel"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.request(http.MethodPut, "/api/profile", `{"username": "Mara K."}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"renamed":1`)

	// the same token now resolves to the chosen name
	w = app.request(http.MethodGet, "/api/profile", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		User  models.Identity `json:"user"`
		Posts []models.Post   `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Mara K.", profile.User.DisplayName)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "Mara K.", profile.Posts[0].Author)

	w = app.request(http.MethodPost, "/api/posts/1/comments", `{"text": "hello"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"author":"Mara K."`)
}

func TestAuthentication(t *testing.T) {
	app := setupApp(t, mockConfig())

	t.Run("anonymous writes are rejected", func(t *testing.T) {
		w := app.request(http.MethodPost, "/api/posts", `{"title": "t", "content": "c", "category": "Travel"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "http://localhost:8080/auth/mock-login", w.Header().Get("Location"))
		assert.Len(t, app.store.Snapshot(), 3)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		w := app.request(http.MethodGet, "/api/profile", "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session cookie", func(t *testing.T) {
		token, _ := app.login(t, "Cookie Fan")
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Cookie Fan")
	})

	t.Run("reads stay public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, app.request(http.MethodGet, "/api/posts", "", "").Code)
		assert.Equal(t, http.StatusOK, app.request(http.MethodGet, "/api/posts/1", "", "").Code)
	})
}

func TestHostedAuthRoutes(t *testing.T) {
	cfg := &config.Config{
		PublicURL:         "https://firsttime.example",
		Auth0Domain:       "tenant.auth0.com",
		Auth0ClientID:     "client",
		Auth0ClientSecret: "shh",
	}
	app := setupApp(t, cfg)

	w := app.request(http.MethodPost, "/auth/mock-login", `{"name": "x"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.request(http.MethodGet, "/auth/login", "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://tenant.auth0.com/authorize?"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(t, mockConfig())
	app.request(http.MethodGet, "/api/posts", "", "")

	w := app.request(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "firsttime_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/posts"`)
}
