package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/goalguru/walletauth/ports"
)

const (
	loginTopic  = "auth.login"
	logoutTopic = "auth.logout"
)

// AuthEvent is the payload published on login and logout.
type AuthEvent struct {
	Action  string    `json:"action"`
	Address string    `json:"address"`
	UserID  string    `json:"user_id"`
	Nonce   string    `json:"nonce,omitempty"`
	At      time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, userID, nonce string) error {
	return p.publish(loginTopic, AuthEvent{
		Action:  ports.ActionLogin,
		Address: address,
		UserID:  userID,
		Nonce:   nonce,
		At:      time.Now().UTC(),
	})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address, userID string) error {
	return p.publish(logoutTopic, AuthEvent{
		Action:  ports.ActionLogout,
		Address: address,
		UserID:  userID,
		At:      time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
