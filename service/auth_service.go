package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/eth"
	"github.com/layer-3/walletauth/internal/logger"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
)

// Options configures an AuthService
type Options struct {
	Signer       eth.Signer
	Domain       eth.EIP712Domain
	HomeDomain   string
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
	CallTimeout  time.Duration
	Clock        clockwork.Clock
}

// AuthService handles authentication business logic
type AuthService struct {
	store     ports.ChallengeStore
	generator *ChallengeGenerator
	verifier  *SignatureVerifier
	issuer    *SessionIssuer
	tokenizer ports.Tokenizer
	logger    *logger.Logger
}

// NewAuthService creates a new authentication service. It refuses to start
// without a server signing identity.
func NewAuthService(
	store ports.ChallengeStore,
	directory ports.UserDirectory,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	logger *logger.Logger,
	opts Options,
) (*AuthService, error) {
	if opts.Signer == nil {
		return nil, eth.ErrMissingKey
	}
	if store == nil || directory == nil || tokenizer == nil {
		return nil, errors.New("store, directory and tokenizer are required")
	}
	if eventPub == nil {
		return nil, errors.New("event publisher is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &AuthService{
		store:     store,
		generator: NewChallengeGenerator(store, opts.Signer, opts.Domain, opts.HomeDomain, opts.Clock, opts.ChallengeTTL),
		verifier:  NewSignatureVerifier(store, opts.Domain, opts.Signer.Address(), opts.Clock),
		issuer:    NewSessionIssuer(directory, tokenizer, eventPub, opts.Clock, opts.SessionTTL, opts.CallTimeout, logger),
		tokenizer: tokenizer,
		logger:    logger,
	}, nil
}

// RequestChallenge issues a new challenge for identity
func (s *AuthService) RequestChallenge(ctx context.Context, identity string) (*core.IssuedChallenge, error) {
	s.logger.Debug("Auth service: challenge requested", "identity", identity)

	issued, err := s.generator.Generate(ctx, identity)
	if err != nil {
		if errors.Is(err, core.ErrInvalidIdentity) {
			s.logger.Info("Auth service: rejected malformed identity", "identity", identity)
			return nil, err
		}
		s.logger.Error("Auth service: failed to create challenge",
			"identity", identity,
			"error", err.Error())
		return nil, err
	}

	metrics.IncChallengeIssued()
	metrics.SetPending(s.store.Len())

	return issued, nil
}

// SubmitVerification checks the signed envelope and on success issues a session
func (s *AuthService) SubmitVerification(ctx context.Context, identity, signedEnvelope string) (*core.Login, error) {
	address, err := s.verifier.Verify(ctx, identity, signedEnvelope)
	metrics.SetPending(s.store.Len())
	if err != nil {
		s.logger.Info("Auth service: verification rejected",
			"identity", identity,
			"error", err.Error())
		metrics.IncVerification(verificationResult(err))
		return nil, err
	}

	login, err := s.issuer.Issue(ctx, address)
	if err != nil {
		s.logger.Error("Auth service: failed to issue session",
			"address", address,
			"error", err.Error())
		metrics.IncVerification(verificationResult(err))
		return nil, err
	}

	metrics.IncVerification(metrics.ResultSuccess)
	metrics.IncSessionIssued()
	s.logger.Info("Auth service: session issued",
		"address", address,
		"user_id", login.User.ID)

	return login, nil
}

// ValidateAccessToken parses a bearer token issued by SubmitVerification
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return session, nil
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, core.ErrChallengeMissingOrExpired):
		return metrics.ResultMissing
	case errors.Is(err, core.ErrMalformedArtifact), errors.Is(err, core.ErrInvalidIdentity):
		return metrics.ResultMalformed
	case errors.Is(err, core.ErrSignatureMismatch):
		return metrics.ResultMismatch
	case errors.Is(err, core.ErrDirectoryUnavailable):
		return metrics.ResultDirectory
	default:
		return "error"
	}
}
