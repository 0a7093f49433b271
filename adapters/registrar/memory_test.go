package registrar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

const addr = "0x0425461847ea2825AFcA4573b2A99A02002F67a5"

func TestFindOrCreateUserIsStable(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistrar()

	id1, err := r.FindOrCreateUser(ctx, addr)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Same address, any casing, resolves to the same user.
	id2, err := r.FindOrCreateUser(ctx, core.NormalizeAddress(addr))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistrar()

	session := core.Session{
		UserID:        "u1",
		WalletAddress: addr,
		Nonce:         "n1",
		ExpiresAt:     time.Now().Add(time.Hour),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, r.CreateSession(ctx, session))

	ok, err := r.ValidateSession(ctx, "n1", addr)
	require.NoError(t, err)
	assert.True(t, ok)

	// Wrong address or unknown nonce does not validate.
	ok, err = r.ValidateSession(ctx, "n1", "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ValidateSession(ctx, "other", addr)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.DeleteSession(ctx, "n1"))
	ok, err = r.ValidateSession(ctx, "n1", addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiredSessionDoesNotValidate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistrar()

	require.NoError(t, r.CreateSession(ctx, core.Session{
		WalletAddress: addr,
		Nonce:         "n-exp",
		ExpiresAt:     time.Now().Add(-time.Minute),
	}))

	ok, err := r.ValidateSession(ctx, "n-exp", addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityLogAppends(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistrar()

	require.NoError(t, r.LogActivity(ctx, "u1", addr, ports.ActionLogin, "test-agent"))
	require.NoError(t, r.LogActivity(ctx, "u1", addr, ports.ActionLogout, "test-agent"))

	activity := r.Activity()
	require.Len(t, activity, 2)
	assert.Equal(t, ports.ActionLogin, activity[0].Action)
	assert.Equal(t, ports.ActionLogout, activity[1].Action)
	assert.Equal(t, core.NormalizeAddress(addr), activity[0].WalletAddress)
}
