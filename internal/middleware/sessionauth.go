// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gcp-panel/backend/internal/session"
)

// AuthCookieName is the session cookie the console sets on login.
const AuthCookieName = "gcp_auth"

// SessionAuth enforces a valid session cookie on every /api route.
//
// The /api/login endpoint is excluded so an operator can obtain a
// session in the first place. Requests without a valid token receive
// 401 with a JSON error body.
func SessionAuth(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/login" {
				next.ServeHTTP(w, r)
				return
			}
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || !sessions.Valid(cookie.Value) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the originating client address, honoring the
// CF-Connecting-IP header set by a fronting proxy and stripping any
// IPv4-mapped prefix.
func ClientIP(r *http.Request) string {
	ip := r.Header.Get("CF-Connecting-IP")
	if ip == "" {
		// RealIP middleware may already have stripped the port.
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	if ip == "" {
		return "-"
	}
	return strings.TrimPrefix(ip, "::ffff:")
}
