package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func authedHandler(auth *DashboardAuth) http.Handler {
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestDashboardAuthPlainPassword(t *testing.T) {
	handler := authedHandler(NewDashboardAuth("admin", "secret", ""))

	tests := []struct {
		name     string
		user     string
		password string
		want     int
	}{
		{"Correct credentials", "admin", "secret", http.StatusOK},
		{"Wrong password", "admin", "guess", http.StatusUnauthorized},
		{"Wrong user", "root", "secret", http.StatusUnauthorized},
		{"Empty credentials", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
			req.SetBasicAuth(tt.user, tt.password)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDashboardAuthBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() error = %v", err)
	}
	handler := authedHandler(NewDashboardAuth("admin", "", string(hash)))

	req := httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with matching hash", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
	req.SetBasicAuth("admin", "guess")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with wrong password", rec.Code)
	}
}

func TestDashboardAuthHashPreferredOverPlain(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() error = %v", err)
	}
	handler := authedHandler(NewDashboardAuth("admin", "plain-secret", string(hash)))

	// The plain password must be ignored when a hash is configured.
	req := httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
	req.SetBasicAuth("admin", "plain-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when hash takes precedence", rec.Code)
	}
}

func TestDashboardAuthNoCredentialsConfigured(t *testing.T) {
	handler := authedHandler(NewDashboardAuth("admin", "", ""))

	req := httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
	req.SetBasicAuth("admin", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when nothing is configured", rec.Code)
	}
}

func TestDashboardAuthChallenge(t *testing.T) {
	handler := authedHandler(NewDashboardAuth("admin", "secret", ""))

	req := httptest.NewRequest(http.MethodGet, "/api/events/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	challenge := rec.Header().Get("WWW-Authenticate")
	if !strings.Contains(challenge, `Basic realm="Analytics Dashboard"`) {
		t.Errorf("WWW-Authenticate = %q", challenge)
	}
}
