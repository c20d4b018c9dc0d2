package ports

import (
	"context"
	"time"

	"github.com/layer-3/walletauth/core"
)

// ChallengeStore holds at most one outstanding challenge per address
type ChallengeStore interface {
	// Put stores the challenge, replacing any prior one for the same address
	Put(ctx context.Context, challenge *core.Challenge) error
	// Take atomically returns and removes the challenge for the address
	Take(ctx context.Context, address string) (*core.Challenge, error)
	// Sweep removes every challenge expired at now and returns how many were removed
	Sweep(now time.Time) int
	// Len returns the number of outstanding challenges
	Len() int
}
