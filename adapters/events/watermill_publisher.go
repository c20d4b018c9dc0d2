package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jonboulle/clockwork"

	"github.com/layer-3/walletauth/ports"
)

// DefaultLoginTopic is the topic login events are published to
const DefaultLoginTopic = "auth.login"

// LoginEvent represents a successful wallet login
type LoginEvent struct {
	Address   string    `json:"address"`
	UserID    string    `json:"user_id"`
	TokenID   string    `json:"token_id"`
	Timestamp time.Time `json:"timestamp"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	clock     clockwork.Clock
}

// NewWatermillPublisher creates a new Watermill publisher. Event timestamps
// are read from clock.
func NewWatermillPublisher(publisher message.Publisher, topic string, clock clockwork.Clock) *WatermillPublisher {
	if topic == "" {
		topic = DefaultLoginTopic
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
		clock:     clock,
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, userID, tokenID string) error {
	event := LoginEvent{
		Address:   address,
		UserID:    userID,
		TokenID:   tokenID,
		Timestamp: p.clock.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event. Used when event publishing is disabled.
type NopPublisher struct{}

// PublishLogin does nothing
func (NopPublisher) PublishLogin(context.Context, string, string, string) error {
	return nil
}

var (
	_ ports.EventPublisher = (*WatermillPublisher)(nil)
	_ ports.EventPublisher = NopPublisher{}
)
