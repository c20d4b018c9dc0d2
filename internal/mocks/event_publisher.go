package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// EventPublisher is a testify mock for ports.EventPublisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishLogin(ctx context.Context, address, userID, tokenID string) error {
	args := m.Called(ctx, address, userID, tokenID)
	return args.Error(0)
}
