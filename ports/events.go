package ports

import "context"

// EventPublisher publishes events to notify other services
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, userID, tokenID string) error
}
