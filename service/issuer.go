package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/logger"
	"github.com/layer-3/walletauth/ports"
)

// DefaultSessionTTL is the lifetime of an issued bearer token
const DefaultSessionTTL = 7 * 24 * time.Hour

// DefaultCallTimeout bounds each call to an external collaborator
const DefaultCallTimeout = 5 * time.Second

// SessionIssuer resolves the durable user and mints a bearer token
type SessionIssuer struct {
	directory ports.UserDirectory
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	clock     clockwork.Clock
	ttl       time.Duration
	timeout   time.Duration
	logger    *logger.Logger
}

// NewSessionIssuer creates a new issuer
func NewSessionIssuer(
	directory ports.UserDirectory,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	clock clockwork.Clock,
	ttl time.Duration,
	timeout time.Duration,
	logger *logger.Logger,
) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &SessionIssuer{
		directory: directory,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		clock:     clock,
		ttl:       ttl,
		timeout:   timeout,
		logger:    logger,
	}
}

// Issue records the login with the user directory and returns a fresh token
func (i *SessionIssuer) Issue(ctx context.Context, address string) (*core.Login, error) {
	now := i.clock.Now()

	user, prevLastSeen, err := i.resolveUser(ctx, address, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDirectoryUnavailable, err)
	}

	session := core.Session{
		ID:        uuid.NewString(),
		Address:   address,
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}
	token, err := i.tokenizer.SessionToAccessToken(&session)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	i.publishLogin(ctx, session)

	return &core.Login{
		Token:        token,
		Session:      session,
		User:         *user,
		PrevLastSeen: prevLastSeen,
	}, nil
}

func (i *SessionIssuer) resolveUser(ctx context.Context, address string, now time.Time) (*core.User, *time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	var prevLastSeen *time.Time
	user, err := i.directory.FindByAddress(ctx, address)
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		user = &core.User{
			ID:        uuid.NewString(),
			Address:   address,
			CreatedAt: now,
		}
	case err != nil:
		return nil, nil, err
	default:
		seen := user.LastSeen
		prevLastSeen = &seen
	}

	user.LastSeen = now
	saved, err := i.directory.Upsert(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return saved, prevLastSeen, nil
}

func (i *SessionIssuer) publishLogin(ctx context.Context, session core.Session) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := i.eventPub.PublishLogin(ctx, session.Address, session.UserID, session.ID); err != nil {
		// the token is already minted; a lost event does not undo the login
		i.logger.Warn("Auth service: failed to publish login event",
			"address", session.Address,
			"error", err.Error())
	}
}
