// Package siwe implements Sign-In With Ethereum challenge generation and
// EIP-191 personal-sign verification for GoalGuru logins.
package siwe

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// Statement is the fixed application statement embedded in every
	// challenge.
	Statement = "Sign in to GoalGuru"

	// Version is the SIWE protocol version marker.
	Version = "1"

	// ChainID is the fixed chain identifier (BNB Smart Chain).
	ChainID = 56

	nonceBytes = 16
)

// GenerateNonce returns a single-use random token. 16 bytes of CSPRNG
// output make collisions within a session window practically impossible.
func GenerateNonce() string {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; there is no meaningful recovery.
		panic(fmt.Sprintf("siwe: entropy source unavailable: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Challenge carries the fields bound into the signed text block.
type Challenge struct {
	Domain   string
	Address  string
	URI      string
	Nonce    string
	IssuedAt time.Time
}

// NewChallenge builds a challenge for one login attempt, stamped with the
// current time.
func NewChallenge(address, nonce, domain, uri string) Challenge {
	return Challenge{
		Domain:   domain,
		Address:  address,
		URI:      uri,
		Nonce:    nonce,
		IssuedAt: time.Now().UTC(),
	}
}

// Format renders the exact text the wallet signs. The layout is the signed
// payload: generation and verification agree on it byte-for-byte, so any
// change here invalidates outstanding sessions.
func (c Challenge) Format() string {
	return fmt.Sprintf(`%s wants you to sign in with your Ethereum account:
%s

%s

URI: %s
Version: %s
Chain ID: %d
Nonce: %s
Issued At: %s`,
		c.Domain,
		c.Address,
		Statement,
		c.URI,
		Version,
		ChainID,
		c.Nonce,
		c.IssuedAt.Format(time.RFC3339),
	)
}

// VerifySignature reports whether signature was produced by address
// personal-signing exactly message. Authentication is a boolean outcome:
// malformed signatures and recovery failures yield false, never an error.
func VerifySignature(message, signature, address string) bool {
	recovered, err := recoverAddress(message, signature)
	if err != nil {
		return false
	}
	return strings.EqualFold(recovered, address)
}

func recoverAddress(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// Wallets encode the recovery id as 27/28 per the Ethereum RPC
	// convention; go-ethereum expects 0/1.
	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] = v - 27
	}

	hash := accounts.TextHash([]byte(message))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
