package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Identity is the authenticated caller of an operator endpoint.
type Identity struct {
	// Principal names the caller: the API key owner or the token subject.
	Principal string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims holds token claims, or key_id for API keys.
	Claims map[string]any

	// ExpiresAt is when the credential expires. Zero means never.
	ExpiresAt time.Time
}

// IsExpired reports whether the credential has expired.
func (id *Identity) IsExpired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}
