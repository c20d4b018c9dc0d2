package directory

import (
	"context"
	"sync"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
)

var _ ports.UserDirectory = (*MemoryDirectory)(nil)

// MemoryDirectory is an in-memory user directory for development and tests
type MemoryDirectory struct {
	users map[string]core.User
	mu    sync.RWMutex
}

// NewMemoryDirectory creates an empty directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]core.User)}
}

// FindByAddress returns the user bound to address
func (d *MemoryDirectory) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[address]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &user, nil
}

// Upsert stores user keyed by its address
func (d *MemoryDirectory) Upsert(ctx context.Context, user *core.User) (*core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := *user
	if existing, ok := d.users[user.Address]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	d.users[user.Address] = stored
	return &stored, nil
}
