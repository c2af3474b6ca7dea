package controllers

import (
	"net/http"

	"firsttime/app/auth"
	"firsttime/app/config"
	"firsttime/app/models"
	"firsttime/app/services"
)

// SystemController serves store status, public client configuration and
// the category list.
type SystemController struct {
	store   *services.PostStore
	cfg     *config.Config
	auth    *auth.Authenticator
	version string
}

func NewSystemController(store *services.PostStore, cfg *config.Config, authenticator *auth.Authenticator, version string) *SystemController {
	return &SystemController{store: store, cfg: cfg, auth: authenticator, version: version}
}

type statusResponse struct {
	State      services.State            `json:"state"`
	Seeded     bool                      `json:"seeded"`
	Posts      int                       `json:"posts"`
	Durability services.DurabilityReport `json:"durability"`
	Version    string                    `json:"version"`
}

// Status reports the store lifecycle and the durability channel.
func (sc *SystemController) Status(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, statusResponse{
		State:      sc.store.State(),
		Seeded:     sc.store.Seeded(),
		Posts:      len(sc.store.Snapshot()),
		Durability: sc.store.Durability(),
		Version:    sc.version,
	})
}

type clientConfig struct {
	Auth0Domain            string `json:"auth0Domain,omitempty"`
	Auth0ClientID          string `json:"auth0ClientId,omitempty"`
	Auth0Audience          string `json:"auth0Audience,omitempty"`
	MockAuth               bool   `json:"mockAuth"`
	LoginURL               string `json:"loginUrl"`
	LogoutURL              string `json:"logoutUrl"`
	CloudinaryCloudName    string `json:"cloudinaryCloudName,omitempty"`
	CloudinaryUploadPreset string `json:"cloudinaryUploadPreset,omitempty"`
	SupabaseURL            string `json:"supabaseUrl,omitempty"`
	SupabaseAnonKey        string `json:"supabaseAnonKey,omitempty"`
}

// Config returns the settings the browser needs. Secrets never leave the
// server.
func (sc *SystemController) Config(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, clientConfig{
		Auth0Domain:            sc.cfg.Auth0Domain,
		Auth0ClientID:          sc.cfg.Auth0ClientID,
		Auth0Audience:          sc.cfg.Auth0Audience,
		MockAuth:               sc.auth.Mock(),
		LoginURL:               sc.auth.LoginURL(),
		LogoutURL:              sc.auth.LogoutURL(),
		CloudinaryCloudName:    sc.cfg.CloudinaryCloudName,
		CloudinaryUploadPreset: sc.cfg.CloudinaryUploadPreset,
		SupabaseURL:            sc.cfg.SupabaseURL,
		SupabaseAnonKey:        sc.cfg.SupabaseAnonKey,
	})
}

// Categories lists the closed category set, led by the "All" filter.
func (sc *SystemController) Categories(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"all":        models.CategoryAll,
		"categories": models.Categories,
	})
}
