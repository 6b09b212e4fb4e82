package auth

import "errors"

// Sentinel errors for authentication.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")

	// ErrNoAuthenticators is returned by New when the configuration
	// enables neither API keys nor JWT.
	ErrNoAuthenticators = errors.New("auth: no authenticators configured")

	// ErrSigningKeyRequired is returned when JWT is enabled without a secret.
	ErrSigningKeyRequired = errors.New("auth: jwt signing key required")
)
