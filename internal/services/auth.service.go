package services

import (
	"crypto/subtle"
)

// AdminAuth validates the shared admin secret. No sessions and no
// tokens are issued: clients present the password itself as a bearer
// credential on every admin request.
type AdminAuth struct {
	password string
}

// NewAdminAuth returns an authenticator for the configured password.
// An empty password disables the admin surface; nothing authenticates
// against it.
func NewAdminAuth(password string) *AdminAuth {
	return &AdminAuth{password: password}
}

// Enabled reports whether an admin password is configured.
func (a *AdminAuth) Enabled() bool {
	return a.password != ""
}

// Check verifies a presented secret in constant time.
func (a *AdminAuth) Check(candidate string) bool {
	if !a.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.password), []byte(candidate)) == 1
}
