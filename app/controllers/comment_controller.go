package controllers

import (
	"log/slog"
	"net/http"

	"firsttime/app/auth"
	"firsttime/app/models"
	"firsttime/app/observability"
	"firsttime/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	store  *services.PostStore
	logger *slog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(store *services.PostStore, logger *slog.Logger) *CommentController {
	if logger == nil {
		logger = observability.Discard()
	}
	return &CommentController{store: store, logger: logger}
}

// Create handles creating a new comment on a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		sendError(w, models.NewUnauthorizedError("login required"))
		return
	}

	var draft models.CommentDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		sendError(w, err)
		return
	}
	draft.Author = identity.DisplayName
	draft.AuthorKey = identity.Key

	postID := mux.Vars(r)["id"]
	comment, err := cc.store.AddComment(r.Context(), postID, draft)
	if comment != nil {
		cc.logger.InfoContext(r.Context(), "comment added", "post_id", postID, "comment_id", comment.ID)
	}
	sendMutation(w, http.StatusCreated, comment, err)
}
