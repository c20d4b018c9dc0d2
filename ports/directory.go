package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// UserDirectory is the durable user store owned by another service.
type UserDirectory interface {
	// FindByAddress returns core.ErrUserNotFound when no record exists
	FindByAddress(ctx context.Context, address string) (*core.User, error)
	Upsert(ctx context.Context, user *core.User) (*core.User, error)
}
