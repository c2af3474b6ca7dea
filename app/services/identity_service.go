package services

import (
	"context"
	"log/slog"

	"firsttime/app/models"
	"firsttime/app/observability"
	"firsttime/app/repositories"
)

// IdentityService resolves display names and runs the rename cascade.
type IdentityService struct {
	store    *PostStore
	profiles repositories.ProfileStore
	logger   *slog.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(store *PostStore, profiles repositories.ProfileStore, logger *slog.Logger) *IdentityService {
	if logger == nil {
		logger = observability.Discard()
	}
	return &IdentityService{store: store, profiles: profiles, logger: logger}
}

// Resolve replaces the provider-supplied display name with the cached one,
// if the user has chosen one.
func (s *IdentityService) Resolve(ctx context.Context, id models.Identity) models.Identity {
	if !id.Authenticated || id.Key == "" {
		return id
	}
	name, ok, err := s.profiles.DisplayName(ctx, id.Key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read cached display name", "identity", id.Key, "error", err)
		return id
	}
	if ok && name != "" {
		id.DisplayName = name
	}
	if id.DisplayName == "" {
		id.DisplayName = models.DefaultDisplayName
	}
	return id
}

// UpdateDisplayName caches the new name and rewrites it onto everything the
// identity authored. A persistence failure is returned alongside the
// updated identity; the in-memory rename stays applied.
func (s *IdentityService) UpdateDisplayName(ctx context.Context, id models.Identity, update models.ProfileUpdate) (models.Identity, int, error) {
	if !id.Authenticated || id.Key == "" {
		return id, 0, models.NewUnauthorizedError("login required")
	}
	update.Normalize()
	if err := update.Validate(); err != nil {
		return id, 0, err
	}

	renamed, cascadeErr := s.store.RenameAuthor(ctx, id.Key, update.DisplayName)
	if cascadeErr != nil && !models.IsPersistence(cascadeErr) {
		return id, 0, cascadeErr
	}

	if err := s.profiles.SetDisplayName(ctx, id.Key, update.DisplayName); err != nil {
		s.logger.ErrorContext(ctx, "failed to cache display name", "identity", id.Key, "error", err)
		if cascadeErr == nil {
			cascadeErr = models.NewPersistenceError("display name", err)
		}
	}

	id.DisplayName = update.DisplayName
	s.logger.InfoContext(ctx, "display name updated", "identity", id.Key, "renamed", renamed)
	return id, renamed, cascadeErr
}
