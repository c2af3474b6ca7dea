package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"firsttime/app/models"
	"firsttime/app/observability"
)

type contextKey string

const identityKey contextKey = "identity"

// Resolver refines a verified identity, for example with a cached display
// name.
type Resolver interface {
	Resolve(ctx context.Context, id models.Identity) models.Identity
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the caller's identity. Anonymous callers get a zero
// identity and false.
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok && id.Authenticated
}

// TokenFromRequest reads a bearer token from the Authorization header or
// the session cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", ErrNoToken
		}
		return parts[1], nil
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrNoToken
}

// Middleware attaches the caller's identity to the request context when a
// valid token is present. Requests without one continue anonymously.
func (a *Authenticator) Middleware(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observability.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			id, err := a.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected token", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if resolver != nil {
				id = resolver.Resolve(r.Context(), id)
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth rejects anonymous callers with 401 and points them at the
// login flow.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		login := a.LoginURL()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", login)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":     "login required",
			"code":      models.CodeUnauthorized,
			"login_url": login,
		})
	})
}
