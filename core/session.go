package core

import (
	"strings"
	"time"
)

// SessionDuration is the fixed validity window of an authenticated session.
const SessionDuration = 24 * time.Hour

// Session binds a wallet address to an application user for a fixed window.
// WalletAddress is always stored lower-cased; Message is the exact challenge
// text that was signed and Nonce is the single-use token that bound the
// challenge to this login attempt.
type Session struct {
	UserID        string    `json:"userId"`
	WalletAddress string    `json:"walletAddress"`
	Signature     string    `json:"signature"`
	Message       string    `json:"message"`
	Nonce         string    `json:"nonce"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Valid reports whether the session has not yet expired.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// NormalizeAddress lower-cases a wallet address for storage and comparison.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}
