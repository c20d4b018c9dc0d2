// Package walletauth is the client side of the wallet challenge/response login.
package walletauth

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/walletauth/internal/eth"
)

// Domain is the EIP-712 domain both sides sign challenges under.
type Domain = eth.EIP712Domain

// Signer is a wallet key able to sign a 32-byte digest.
type Signer interface {
	Sign(digest []byte) ([]byte, error)
	Address() common.Address
}

// Client represents the public interface for interacting with the auth service
type Client interface {
	// Challenge requests a fresh server-signed challenge for address
	Challenge(ctx context.Context, address string) (*Challenge, error)

	// Verify submits the co-signed envelope and returns a session
	Verify(ctx context.Context, address, envelope string) (*Session, error)

	// Me returns the account bound to an access token
	Me(ctx context.Context, accessToken string) (*Account, error)

	// Login runs the whole flow for wallet
	Login(ctx context.Context, wallet Signer) (*Session, error)
}

// Challenge is an issued, not yet signed challenge.
type Challenge struct {
	Envelope  string `json:"envelope"`
	Nonce     string `json:"nonce"`
	ExpiresIn int64  `json:"expires_in"`
}

// Session is returned by a successful verification.
type Session struct {
	Success   bool       `json:"success"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
	Identity  string     `json:"identity"`
	UserID    string     `json:"user_id"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// Account describes the holder of an access token.
type Account struct {
	Address   string    `json:"address"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
