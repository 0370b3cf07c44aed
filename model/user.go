package model

import "time"

// Credential is a stored login for the admin surface.
// Password is kept exactly as configured; see services.CatalogueStore.Authenticate.
type Credential struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	IsAdmin  bool   `json:"isAdmin" yaml:"isAdmin"`
}

// PublicUser is a Credential without its password
type PublicUser struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Public strips the password from the credential
func (c Credential) Public() PublicUser {
	return PublicUser{
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
	}
}

// SessionUser is the per-session record of who is signed in
type SessionUser struct {
	PublicUser
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now
func (s SessionUser) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
