package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with session-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"` // ID of the durable user record
}
