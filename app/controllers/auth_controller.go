package controllers

import (
	"net/http"
	"time"

	"firsttime/app/auth"
)

// AuthController handles the login and logout flows.
type AuthController struct {
	auth *auth.Authenticator
}

func NewAuthController(authenticator *auth.Authenticator) *AuthController {
	return &AuthController{auth: authenticator}
}

// Login sends the browser to the hosted login page. In mock mode there is
// no hosted page, so the mock endpoint is described instead.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if ac.auth.Mock() {
		sendJSON(w, http.StatusOK, map[string]interface{}{
			"mock":      true,
			"login_url": ac.auth.LoginURL(),
			"method":    http.MethodPost,
		})
		return
	}
	http.Redirect(w, r, ac.auth.LoginURL(), http.StatusFound)
}

// Logout clears the session cookie and ends the hosted session.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, ac.auth.LogoutURL(), http.StatusFound)
}

type mockLoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MockLogin issues a locally signed token for the given name.
func (ac *AuthController) MockLogin(w http.ResponseWriter, r *http.Request) {
	var req mockLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, err)
		return
	}

	token, identity, err := ac.auth.IssueMockToken(req.Name, req.Email)
	if err != nil {
		sendError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  identity,
	})
}
