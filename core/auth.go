package core

import "time"

// Challenge represents an outstanding authentication challenge for one address
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	Address   string    // Checksummed Ethereum address the challenge is bound to
	Nonce     []byte    // Random nonce embedded in the envelope
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
	Envelope  string    // Server-signed envelope handed to the client
	Payload   []byte    // Encoded message body, compared byte-for-byte on verify
}

// Expired reports whether the challenge is no longer usable at now.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IssuedChallenge is what the client receives for a challenge request
type IssuedChallenge struct {
	Envelope  string
	Nonce     string
	ExpiresIn time.Duration
}

// Session represents an authenticated user session
type Session struct {
	ID        string    // Unique token identifier
	Address   string    // Ethereum address of the user
	UserID    string    // Durable user record ID
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the bearer token stops being accepted
}

// User is the durable record kept by the user directory.
// It carries display-safe fields only.
type User struct {
	ID        string
	Address   string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Login is the result of a successful verification
type Login struct {
	Token        string
	Session      Session
	User         User
	PrevLastSeen *time.Time // nil on the first login
}
