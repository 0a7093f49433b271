package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalguru/walletauth/core"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func testSession(expiresIn time.Duration) core.Session {
	now := time.Now()
	return core.Session{
		UserID:        "user-1",
		WalletAddress: "0x0425461847ea2825afca4573b2a99a02002f67a5",
		Nonce:         "nonce-1",
		ExpiresAt:     now.Add(expiresIn),
		CreatedAt:     now,
	}
}

func TestIssueAndParse(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t))
	session := testSession(time.Hour)

	token, err := tok.IssueToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	address, err := tok.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.WalletAddress, address)
}

func TestParseExpiredToken(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t))

	token, err := tok.IssueToken(testSession(-time.Minute))
	require.NoError(t, err)

	_, err = tok.ParseToken(token)
	assert.Error(t, err)
}

func TestParseWithDifferentKeyFails(t *testing.T) {
	token, err := NewJWTTokenizer(newKey(t)).IssueToken(testSession(time.Hour))
	require.NoError(t, err)

	_, err = NewJWTTokenizer(newKey(t)).ParseToken(token)
	assert.Error(t, err)
}

func TestParseGarbageFails(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t))

	_, err := tok.ParseToken("not.a.token")
	assert.Error(t, err)
}
