package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"firsttime/app/auth"
	"firsttime/app/feed"
	"firsttime/app/models"
	"firsttime/app/observability"
	"firsttime/app/services"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"
)

// PostController handles HTTP requests for posts
type PostController struct {
	store  *services.PostStore
	logger *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(store *services.PostStore, logger *slog.Logger) *PostController {
	if logger == nil {
		logger = observability.Discard()
	}
	return &PostController{store: store, logger: logger}
}

// Index serves the derived feed. The body carries a strong ETag so clients
// can skip re-rendering an unchanged view.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category, err := models.ParseCategoryFilter(query.Get("category"))
	if err != nil {
		sendError(w, err)
		return
	}

	view := feed.Derive(pc.store.Snapshot(), category, query.Get("q"))

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(view); err != nil {
		pc.logger.ErrorContext(r.Context(), "failed to encode feed", "error", err)
		sendError(w, err)
		return
	}

	etag := viewETag(body.Bytes())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.store.Get(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post. The author is always the caller.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		sendError(w, models.NewUnauthorizedError("login required"))
		return
	}

	var draft models.PostDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		sendError(w, err)
		return
	}
	draft.Author = identity.DisplayName
	draft.AuthorKey = identity.Key

	post, err := pc.store.AddPost(r.Context(), draft)
	if post != nil {
		pc.logger.InfoContext(r.Context(), "post created", "post_id", post.ID, "author", identity.Key)
	}
	sendMutation(w, http.StatusCreated, post, err)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := pc.store.DeletePost(r.Context(), id)
	if err == nil || models.IsPersistence(err) {
		pc.logger.InfoContext(r.Context(), "post deleted", "post_id", id)
	}
	sendMutation(w, http.StatusNoContent, nil, err)
}

// ToggleFeatured features or unfeatures a post.
func (pc *PostController) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	post, err := pc.store.ToggleFeatured(r.Context(), mux.Vars(r)["id"])
	sendMutation(w, http.StatusOK, post, err)
}

func viewETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return fmt.Sprintf(`"%x"`, sum[:16])
}
