package ports

import (
	"context"
	"time"
)

// ReplayGuard tracks consumed nonces so a signed challenge cannot be
// replayed into a second session.
type ReplayGuard interface {
	MarkUsed(ctx context.Context, nonce string, ttl time.Duration) error
	IsUsed(ctx context.Context, nonce string) (bool, error)
}
