package secret

import "errors"

// Sentinel errors for secret resolution.
var (
	ErrMissingEnv        = errors.New("secret: missing required environment variables")
	ErrUnknownProvider   = errors.New("secret: provider not registered")
	ErrInvalidProvider   = errors.New("secret: invalid provider registration")
	ErrDuplicateProvider = errors.New("secret: provider already registered")
	ErrEmptyValue        = errors.New("secret: provider returned empty value")
	ErrNotFound          = errors.New("secret: reference not found")
	ErrInvalidRef        = errors.New("secret: invalid reference")
)
