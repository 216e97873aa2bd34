package entity

import (
	"strings"
	"time"
)

// Identity is an authenticated principal issued by the auth directory.
// It is carried explicitly through request context, never through globals.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`

	// AccessToken is the bearer token the identity was resolved from.
	AccessToken string `json:"-"`
}

// PreferredUsername returns the trimmed "username" metadata value, if any.
func (i *Identity) PreferredUsername() string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	v, ok := i.Metadata["username"].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Session is a token pair issued by the auth directory together with its owner.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"user"`
}
