package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"autocut/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

const authRealm = "Analytics Dashboard"

// DashboardAuth guards the dashboard endpoints with HTTP basic auth.
// The password is checked against the bcrypt hash when one is
// configured, otherwise against the plain-text password. With neither
// configured every request is rejected.
type DashboardAuth struct {
	user         string
	password     string
	passwordHash string
}

// NewDashboardAuth builds the auth middleware from configuration.
func NewDashboardAuth(user, password, passwordHash string) *DashboardAuth {
	return &DashboardAuth{
		user:         user,
		password:     password,
		passwordHash: passwordHash,
	}
}

// Middleware wraps a handler with the basic auth check.
func (a *DashboardAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !a.authorize(user, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+authRealm+`", charset="UTF-8"`)
			writeJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *DashboardAuth) authorize(user, password string) bool {
	if a.password == "" && a.passwordHash == "" {
		return false
	}

	// Hash both sides so the comparison is constant time regardless
	// of input lengths.
	userHash := sha256.Sum256([]byte(user))
	wantUserHash := sha256.Sum256([]byte(a.user))
	userOK := subtle.ConstantTimeCompare(userHash[:], wantUserHash[:]) == 1

	var passwordOK bool
	if a.passwordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password))
		if err != nil && err != bcrypt.ErrMismatchedHashAndPassword {
			logging.Warn("dashboard password hash is malformed: %v", err)
		}
		passwordOK = err == nil
	} else {
		passwordHash := sha256.Sum256([]byte(password))
		wantPasswordHash := sha256.Sum256([]byte(a.password))
		passwordOK = subtle.ConstantTimeCompare(passwordHash[:], wantPasswordHash[:]) == 1
	}

	return userOK && passwordOK
}
