package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/ports"
)

// MaxSignatures bounds the work spent on a single submitted envelope
const MaxSignatures = 16

// SignatureVerifier checks a client-returned envelope against the stored challenge
type SignatureVerifier struct {
	store  ports.ChallengeStore
	domain eth.EIP712Domain
	server common.Address
	clock  clockwork.Clock
}

// NewSignatureVerifier creates a verifier trusting envelopes signed by server
func NewSignatureVerifier(store ports.ChallengeStore, domain eth.EIP712Domain, server common.Address, clock clockwork.Clock) *SignatureVerifier {
	return &SignatureVerifier{
		store:  store,
		domain: domain,
		server: server,
		clock:  clock,
	}
}

// Verify consumes the outstanding challenge for identity and checks that
// signedEnvelope is that challenge, still server-signed, and co-signed by
// identity. The challenge is gone after this call whatever the outcome.
func (v *SignatureVerifier) Verify(ctx context.Context, identity, signedEnvelope string) (string, error) {
	account, err := eth.ParseAddress(identity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidIdentity, err)
	}
	// The server signature never counts as proof for the server address itself.
	if account == v.server {
		return "", fmt.Errorf("%w: server address", core.ErrInvalidIdentity)
	}
	address := account.Hex()

	challenge, err := v.store.Take(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrChallengeNotFound) || errors.Is(err, core.ErrChallengeExpired) {
			return "", core.ErrChallengeMissingOrExpired
		}
		return "", fmt.Errorf("failed to take challenge: %w", err)
	}

	env, err := eth.DecodeEnvelope(signedEnvelope)
	if err != nil {
		return "", core.ErrMalformedArtifact
	}
	if len(env.Signatures) > MaxSignatures {
		return "", core.ErrMalformedArtifact
	}

	payload, err := env.Payload()
	if err != nil {
		return "", core.ErrMalformedArtifact
	}
	if !bytes.Equal(payload, challenge.Payload) {
		return "", core.ErrSignatureMismatch
	}

	now := uint64(v.clock.Now().Unix())
	if now < env.Message.MinTime || now > env.Message.MaxTime {
		return "", core.ErrChallengeMissingOrExpired
	}

	// Provenance first: the envelope must still carry our own signature.
	ok, err := env.HasSignatureFrom(v.domain, v.server)
	if err != nil || !ok {
		return "", core.ErrSignatureMismatch
	}

	ok, err = env.HasSignatureFrom(v.domain, account)
	if err != nil || !ok {
		return "", core.ErrSignatureMismatch
	}

	return address, nil
}
