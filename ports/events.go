package ports

import "context"

// EventPublisher notifies other components about auth lifecycle events.
// Publishing is best effort and never blocks the auth flow.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, userID, nonce string) error
	PublishLogout(ctx context.Context, address, userID string) error
}
