package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/ports"
)

// NonceSize is the number of random bytes embedded in every challenge
const NonceSize = 48

// DefaultChallengeTTL is how long a challenge may be answered
const DefaultChallengeTTL = 5 * time.Minute

// ChallengeGenerator issues server-signed challenges and records them in the store
type ChallengeGenerator struct {
	store      ports.ChallengeStore
	signer     eth.Signer
	domain     eth.EIP712Domain
	homeDomain string
	clock      clockwork.Clock
	ttl        time.Duration
	random     io.Reader
}

// NewChallengeGenerator creates a generator signing with signer
func NewChallengeGenerator(
	store ports.ChallengeStore,
	signer eth.Signer,
	domain eth.EIP712Domain,
	homeDomain string,
	clock clockwork.Clock,
	ttl time.Duration,
) *ChallengeGenerator {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeGenerator{
		store:      store,
		signer:     signer,
		domain:     domain,
		homeDomain: homeDomain,
		clock:      clock,
		ttl:        ttl,
		random:     rand.Reader,
	}
}

// Generate creates a fresh challenge for identity, replacing any outstanding one
func (g *ChallengeGenerator) Generate(ctx context.Context, identity string) (*core.IssuedChallenge, error) {
	account, err := eth.ParseAddress(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidIdentity, err)
	}
	// The server's own signature is already attached to every challenge.
	if account == g.signer.Address() {
		return nil, fmt.Errorf("%w: server address", core.ErrInvalidIdentity)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(g.random, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := g.clock.Now()
	expiresAt := now.Add(g.ttl)

	env := &eth.Envelope{
		Message: eth.ChallengeMessage{
			Server:  g.signer.Address(),
			Account: account,
			Nonce:   nonce,
			Domain:  g.homeDomain,
			MinTime: uint64(now.Unix()),
			MaxTime: uint64(expiresAt.Unix()),
		},
	}
	if err := env.AddSignature(g.domain, g.signer); err != nil {
		return nil, fmt.Errorf("failed to sign challenge: %w", err)
	}

	payload, err := env.Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to encode challenge payload: %w", err)
	}
	text, err := eth.EncodeEnvelope(env)
	if err != nil {
		return nil, err
	}

	challenge := &core.Challenge{
		ID:        uuid.NewString(),
		Address:   account.Hex(),
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Envelope:  text,
		Payload:   payload,
	}
	if err := g.store.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &core.IssuedChallenge{
		Envelope:  text,
		Nonce:     base58.Encode(nonce),
		ExpiresIn: g.ttl,
	}, nil
}
