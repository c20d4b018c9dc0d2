package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

var _ ports.ChallengeStore = (*MemoryStore)(nil)

// MemoryStore keeps outstanding challenges in process memory, keyed by address.
// Contents do not survive a restart.
type MemoryStore struct {
	challenges map[string]*core.Challenge
	clock      clockwork.Clock
	mu         sync.Mutex
}

// NewMemoryStore creates a new in-memory challenge store
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
		clock:      clock,
	}
}

// Put stores a challenge, silently replacing any prior one for the address
func (s *MemoryStore) Put(ctx context.Context, challenge *core.Challenge) error {
	if challenge == nil || challenge.Address == "" {
		return errors.New("challenge must have an address")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Address] = challenge
	return nil
}

// Take removes and returns the challenge for address. The expiry check and the
// removal happen under the same lock, so at most one caller ever gets it.
func (s *MemoryStore) Take(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[address]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	delete(s.challenges, address)

	if challenge.Expired(s.clock.Now()) {
		return nil, core.ErrChallengeExpired
	}

	return challenge, nil
}

// Sweep removes all challenges that have expired at now
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for address, challenge := range s.challenges {
		if !now.Before(challenge.ExpiresAt) {
			delete(s.challenges, address)
			removed++
		}
	}
	return removed
}

// Len returns the number of outstanding challenges
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.challenges)
}
