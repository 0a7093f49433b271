package guard

import (
	"context"
	"sync"
	"time"

	"github.com/goalguru/walletauth/ports"
)

// MemoryGuard is an in-memory implementation of the ReplayGuard interface.
type MemoryGuard struct {
	used map[string]time.Time
	mu   sync.RWMutex
}

// NewMemoryGuard creates a new in-memory replay guard.
func NewMemoryGuard() ports.ReplayGuard {
	return &MemoryGuard{
		used: make(map[string]time.Time),
	}
}

// MarkUsed records the nonce as consumed until the TTL elapses.
func (g *MemoryGuard) MarkUsed(ctx context.Context, nonce string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.used[nonce] = time.Now().Add(ttl)
	return nil
}

// IsUsed checks whether the nonce has been consumed and its TTL has not
// elapsed.
func (g *MemoryGuard) IsUsed(ctx context.Context, nonce string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	expiry, exists := g.used[nonce]
	if !exists {
		return false, nil
	}

	if time.Now().After(expiry) {
		return false, nil
	}

	return true, nil
}
