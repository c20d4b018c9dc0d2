package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/layer-3/walletauth/core"
)

// UserDirectory is a testify mock for ports.UserDirectory
type UserDirectory struct {
	mock.Mock
}

func (m *UserDirectory) FindByAddress(ctx context.Context, address string) (*core.User, error) {
	args := m.Called(ctx, address)
	user, _ := args.Get(0).(*core.User)
	return user, args.Error(1)
}

func (m *UserDirectory) Upsert(ctx context.Context, user *core.User) (*core.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*core.User)
	return saved, args.Error(1)
}
