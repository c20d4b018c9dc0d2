package core

import "errors"

// Protocol errors returned to callers of the authentication flow.
var (
	ErrInvalidIdentity           = errors.New("invalid identity")
	ErrChallengeMissingOrExpired = errors.New("challenge missing or expired")
	ErrMalformedArtifact         = errors.New("malformed artifact")
	ErrSignatureMismatch         = errors.New("signature mismatch")
	ErrDirectoryUnavailable      = errors.New("user directory unavailable")
)

// Store and token errors.
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExpired  = errors.New("challenge has expired")
	ErrUserNotFound      = errors.New("user not found")
	ErrTokenExpired      = errors.New("token has expired")
	ErrInvalidToken      = errors.New("invalid token")
)
