// Package auth verifies identity tokens issued by Auth0, or by the local
// mock login when Auth0 is not configured, and carries the resulting
// identity through the request context.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"firsttime/app/config"
	"firsttime/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	mockIssuer   = "firsttime-mock"
	mockTokenTTL = 7 * 24 * time.Hour

	// CookieName holds the token for browser sessions.
	CookieName = "ft_token"
)

var ErrNoToken = errors.New("no token")

// Claims are the token claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	Nickname string `json:"nickname,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Authenticator verifies tokens and builds login and logout URLs.
type Authenticator struct {
	domain    string
	clientID  string
	audience  string
	publicURL string

	hmacKey []byte
	rsaKey  *rsa.PublicKey
	mock    bool
	clock   func() time.Time
}

// New builds an Authenticator from configuration. Without Auth0 settings it
// runs in mock mode and signs its own tokens with MOCK_AUTH_SECRET.
func New(cfg *config.Config) (*Authenticator, error) {
	a := &Authenticator{
		domain:    strings.TrimSuffix(strings.TrimPrefix(cfg.Auth0Domain, "https://"), "/"),
		clientID:  cfg.Auth0ClientID,
		audience:  cfg.Auth0Audience,
		publicURL: cfg.PublicURL,
		clock:     time.Now,
	}

	if !cfg.Auth0Enabled() {
		if cfg.MockAuthSecret == "" {
			return nil, errors.New("mock auth requires MOCK_AUTH_SECRET")
		}
		a.mock = true
		a.hmacKey = []byte(cfg.MockAuthSecret)
		return a, nil
	}

	switch {
	case cfg.Auth0PublicKey != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.Auth0PublicKey))
		if err != nil {
			return nil, fmt.Errorf("parse AUTH0_PUBLIC_KEY: %w", err)
		}
		a.rsaKey = key
	case cfg.Auth0ClientSecret != "":
		a.hmacKey = []byte(cfg.Auth0ClientSecret)
	default:
		return nil, errors.New("Auth0 requires AUTH0_CLIENT_SECRET or AUTH0_PUBLIC_KEY")
	}
	return a, nil
}

// Mock reports whether tokens are issued locally.
func (a *Authenticator) Mock() bool {
	return a.mock
}

func (a *Authenticator) issuer() string {
	if a.mock {
		return mockIssuer
	}
	return "https://" + a.domain + "/"
}

// Verify parses and validates a token and returns the identity it names.
func (a *Authenticator) Verify(tokenString string) (models.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(a.issuer()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock),
	}
	if a.rsaKey != nil {
		opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
	}
	if a.audience != "" && !a.mock {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if a.rsaKey != nil {
			return a.rsaKey, nil
		}
		return a.hmacKey, nil
	}, opts...)
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return models.Identity{}, errors.New("invalid token: missing subject")
	}

	return models.Identity{
		Key:           claims.Subject,
		DisplayName:   displayName(claims),
		Email:         claims.Email,
		Authenticated: true,
	}, nil
}

// displayName picks nickname, then full name, then the default label.
func displayName(c Claims) string {
	if n := strings.TrimSpace(c.Nickname); n != "" {
		return n
	}
	if n := strings.TrimSpace(c.Name); n != "" {
		return n
	}
	return models.DefaultDisplayName
}

// IssueMockToken signs a token for the given name. The identity key is
// derived from the name so the same name logs in as the same user.
func (a *Authenticator) IssueMockToken(name, email string) (string, models.Identity, error) {
	if !a.mock {
		return "", models.Identity{}, errors.New("mock login is disabled when Auth0 is configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.Identity{}, models.NewValidationError("name is required")
	}

	now := a.clock()
	key := "mock|" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name))).String()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    mockIssuer,
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(mockTokenTTL)),
		},
		Nickname: name,
		Email:    strings.TrimSpace(email),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.hmacKey)
	if err != nil {
		return "", models.Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, models.Identity{
		Key:           key,
		DisplayName:   name,
		Email:         claims.Email,
		Authenticated: true,
	}, nil
}

// LoginURL is where unauthenticated users are sent to sign in.
func (a *Authenticator) LoginURL() string {
	if a.mock {
		return a.publicURL + "/auth/mock-login"
	}
	q := url.Values{}
	q.Set("response_type", "token id_token")
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.publicURL+"/")
	q.Set("scope", "openid profile email")
	if a.audience != "" {
		q.Set("audience", a.audience)
	}
	return "https://" + a.domain + "/authorize?" + q.Encode()
}

// LogoutURL ends the hosted session and returns to the feed.
func (a *Authenticator) LogoutURL() string {
	if a.mock {
		return a.publicURL + "/"
	}
	q := url.Values{}
	q.Set("client_id", a.clientID)
	q.Set("returnTo", a.publicURL+"/")
	return "https://" + a.domain + "/v2/logout?" + q.Encode()
}
