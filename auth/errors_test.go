package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrMissingCredentials,
		ErrInvalidCredentials,
		ErrTokenExpired,
		ErrTokenMalformed,
		ErrNoAuthenticators,
		ErrSigningKeyRequired,
	}
	for _, err := range errs {
		if !strings.HasPrefix(err.Error(), "auth: ") {
			t.Errorf("%q lacks auth: prefix", err)
		}
		wrapped := fmt.Errorf("context: %w", err)
		if !errors.Is(wrapped, err) {
			t.Errorf("errors.Is(wrapped, %v) = false", err)
		}
	}
}
