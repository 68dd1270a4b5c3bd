package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gcp-panel/backend/internal/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth(t *testing.T) {
	sessions := session.NewStore()
	token, err := sessions.Create()
	if err != nil {
		t.Fatal(err)
	}
	mw := SessionAuth(sessions)(okHandler())

	tests := []struct {
		name         string
		path         string
		cookie       *http.Cookie
		expectedCode int
	}{
		{
			name:         "login exempt",
			path:         "/api/login",
			expectedCode: http.StatusOK,
		},
		{
			name:         "no cookie",
			path:         "/api/status",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "invalid token",
			path:         "/api/status",
			cookie:       &http.Cookie{Name: AuthCookieName, Value: "bogus"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid token",
			path:         "/api/status",
			cookie:       &http.Cookie{Name: AuthCookieName, Value: token},
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			mw.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
			if tt.expectedCode == http.StatusUnauthorized {
				if got := rec.Body.String(); got != `{"error":"Unauthorized"}` {
					t.Errorf("body = %q", got)
				}
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		cfHeader   string
		want       string
	}{
		{"plain ipv4", "203.0.113.7:52000", "", "203.0.113.7"},
		{"ipv6", "[2001:db8::1]:52000", "", "2001:db8::1"},
		{"ipv4 mapped", "[::ffff:203.0.113.7]:52000", "", "203.0.113.7"},
		{"cf header wins", "10.0.0.1:52000", "198.51.100.9", "198.51.100.9"},
		{"no port after RealIP", "203.0.113.7", "", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.cfHeader != "" {
				req.Header.Set("CF-Connecting-IP", tt.cfHeader)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q; want %q", got, tt.want)
			}
		})
	}
}
