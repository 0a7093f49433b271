package guard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalguru/walletauth/ports"
)

func newRedisGuard(t *testing.T) (ports.ReplayGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisGuard(client), mr
}

func TestGuardMarksNonceUsed(t *testing.T) {
	ctx := context.Background()

	redisGuard, _ := newRedisGuard(t)
	for name, g := range map[string]ports.ReplayGuard{
		"redis":  redisGuard,
		"memory": NewMemoryGuard(),
	} {
		t.Run(name, func(t *testing.T) {
			used, err := g.IsUsed(ctx, "nonce-a")
			require.NoError(t, err)
			assert.False(t, used)

			require.NoError(t, g.MarkUsed(ctx, "nonce-a", time.Hour))

			used, err = g.IsUsed(ctx, "nonce-a")
			require.NoError(t, err)
			assert.True(t, used)

			// Other nonces are unaffected.
			used, err = g.IsUsed(ctx, "nonce-b")
			require.NoError(t, err)
			assert.False(t, used)
		})
	}
}

func TestRedisGuardTTLExpires(t *testing.T) {
	ctx := context.Background()
	g, mr := newRedisGuard(t)

	require.NoError(t, g.MarkUsed(ctx, "nonce-ttl", time.Minute))

	mr.FastForward(2 * time.Minute)

	used, err := g.IsUsed(ctx, "nonce-ttl")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestMemoryGuardTTLExpires(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard()

	require.NoError(t, g.MarkUsed(ctx, "nonce-ttl", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	used, err := g.IsUsed(ctx, "nonce-ttl")
	require.NoError(t, err)
	assert.False(t, used)
}
