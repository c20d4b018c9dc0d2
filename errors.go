package walletauth

import (
	"errors"
	"fmt"

	"github.com/layer-3/walletauth/core"
)

var (
	// ErrUntrustedServer is returned when a challenge is not signed by the expected server
	ErrUntrustedServer = errors.New("challenge not signed by trusted server")

	// ErrWrongAccount is returned when a challenge was issued for another account
	ErrWrongAccount = errors.New("challenge issued for a different account")
)

// APIError is a non-2xx response from the auth service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("walletauth: %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the error code onto the matching core error so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_identity":
		return core.ErrInvalidIdentity
	case "challenge_missing_or_expired":
		return core.ErrChallengeMissingOrExpired
	case "malformed_artifact":
		return core.ErrMalformedArtifact
	case "signature_mismatch":
		return core.ErrSignatureMismatch
	case "directory_unavailable":
		return core.ErrDirectoryUnavailable
	case "token_expired":
		return core.ErrTokenExpired
	case "invalid_token":
		return core.ErrInvalidToken
	}
	return nil
}
