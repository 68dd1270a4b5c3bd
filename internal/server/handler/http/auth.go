package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gcp-panel/backend/internal/middleware"
	"github.com/gcp-panel/backend/internal/session"
)

// sessionMaxAge is the lifetime of the session cookie.
const sessionMaxAge = 7 * 24 * time.Hour

// minPasswordLength is the shortest accepted console password.
const minPasswordLength = 5

// ConfigStore defines the console configuration operations required by
// the auth handlers. The password is compared in plain text; a known
// weakness kept deliberately rather than changed in passing.
type ConfigStore interface {
	// Password returns the current console password.
	Password() string
	// SetPassword persists a new console password.
	SetPassword(password string) error
}

// AuthHandler handles login, logout and password changes.
type AuthHandler struct {
	Config   ConfigStore
	Sessions *session.Store
	Audit    Auditor
}

// Login handles POST /api/login. A correct password mints a session
// token and sets it as an HTTP-only cookie. A wrong password answers
// 200 with success=false, matching the UI contract.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Password != h.Config.Password() {
		h.Audit.Append(middleware.ClientIP(r), "login", "failed")
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Password Incorrect"})
		return
	}

	token, err := h.Sessions.Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	h.Audit.Append(middleware.ClientIP(r), "login", "success")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout handles POST /api/logout, destroying the session token and
// clearing the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.AuthCookieName); err == nil {
		h.Sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	h.Audit.Append(middleware.ClientIP(r), "logout", "")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ChangePassword handles POST /api/setup/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password too short")
		return
	}
	if err := h.Config.SetPassword(req.NewPassword); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.Audit.Append(middleware.ClientIP(r), "change_password", "")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
