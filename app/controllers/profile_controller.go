package controllers

import (
	"net/http"

	"firsttime/app/auth"
	"firsttime/app/feed"
	"firsttime/app/models"
	"firsttime/app/services"
)

// ProfileController serves the caller's archive and display name settings.
type ProfileController struct {
	store      *services.PostStore
	identities *services.IdentityService
}

func NewProfileController(store *services.PostStore, identities *services.IdentityService) *ProfileController {
	return &ProfileController{store: store, identities: identities}
}

type profileResponse struct {
	User    models.Identity `json:"user"`
	Posts   []*models.Post  `json:"posts"`
	Renamed *int            `json:"renamed,omitempty"`
}

// Show returns the caller's identity and the posts keyed to it.
func (pc *ProfileController) Show(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		sendError(w, models.NewUnauthorizedError("login required"))
		return
	}
	sendJSON(w, http.StatusOK, profileResponse{
		User:  identity,
		Posts: feed.ByAuthor(pc.store.Snapshot(), identity.Key),
	})
}

// Update changes the display name and cascades it onto authored content.
func (pc *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		sendError(w, models.NewUnauthorizedError("login required"))
		return
	}

	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		sendError(w, err)
		return
	}

	updated, renamed, err := pc.identities.UpdateDisplayName(r.Context(), identity, update)
	if err != nil && !models.IsPersistence(err) {
		sendError(w, err)
		return
	}
	sendMutation(w, http.StatusOK, profileResponse{
		User:    updated,
		Posts:   feed.ByAuthor(pc.store.Snapshot(), updated.Key),
		Renamed: &renamed,
	}, err)
}
