package ports

import "github.com/goalguru/walletauth/core"

// SessionStore persists the single local session slot.
//
// Implementations degrade gracefully: when no persistent storage is
// available, Store and Clear are no-ops and Get reports no session.
// Corrupt or expired records are treated as absence, not as errors.
type SessionStore interface {
	// Store overwrites the slot with the given session.
	Store(session core.Session)

	// Get returns the stored session, if one exists and deserializes.
	// Expired sessions are cleared and reported as absent.
	Get() (core.Session, bool)

	// IsValid reports whether a stored, unexpired session exists.
	IsValid() bool

	// Clear removes the slot. Clearing an empty slot is not an error.
	Clear()
}
