package auth

import (
	"fmt"
	"time"
)

// KeyConfig registers one API key in plain form. The key is hashed before
// it is stored.
type KeyConfig struct {
	ID        string
	Key       string
	Principal string
	ExpiresAt time.Time
}

// Config selects the authenticators guarding operator endpoints.
type Config struct {
	// APIKeys enables the API key authenticator when non-empty.
	APIKeys []KeyConfig

	// APIKeyHeader overrides the API key header.
	APIKeyHeader string

	// JWT enables the bearer token authenticator when Secret is set.
	JWT JWTConfig
}

// Enabled reports whether any authenticator is configured.
func (c Config) Enabled() bool {
	return len(c.APIKeys) > 0 || len(c.JWT.Secret) > 0
}

// New builds the authenticator described by cfg. API keys are tried
// before bearer tokens.
func New(cfg Config) (Authenticator, error) {
	if !cfg.Enabled() {
		return nil, ErrNoAuthenticators
	}

	var auths []Authenticator
	if len(cfg.APIKeys) > 0 {
		store := NewMemoryAPIKeyStore()
		for i, k := range cfg.APIKeys {
			if k.Key == "" {
				return nil, fmt.Errorf("auth: api key %d: %w", i, ErrMissingCredentials)
			}
			id := k.ID
			if id == "" {
				id = fmt.Sprintf("key-%d", i)
			}
			principal := k.Principal
			if principal == "" {
				principal = id
			}
			store.Add(&APIKeyInfo{
				ID:        id,
				KeyHash:   HashAPIKey(k.Key),
				Principal: principal,
				ExpiresAt: k.ExpiresAt,
			})
		}
		auths = append(auths, NewAPIKeyAuthenticator(APIKeyConfig{HeaderName: cfg.APIKeyHeader}, store))
	}
	if len(cfg.JWT.Secret) > 0 {
		j, err := NewJWTAuthenticator(cfg.JWT)
		if err != nil {
			return nil, err
		}
		auths = append(auths, j)
	}

	if len(auths) == 1 {
		return auths[0], nil
	}
	return NewCompositeAuthenticator(auths...), nil
}
