package ports

import (
	"context"

	"github.com/goalguru/walletauth/core"
)

// Activity actions recorded by the registrar's audit log.
const (
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Registrar is the remote persistence service holding user, session and
// activity records. The remote store is authoritative: a local session
// the registrar does not recognize must be discarded.
type Registrar interface {
	// FindOrCreateUser looks up a user by normalized wallet address,
	// inserting a row on first login and bumping last_login_at on
	// subsequent ones. Concurrent first logins for one address must
	// not produce duplicate rows.
	FindOrCreateUser(ctx context.Context, walletAddress string) (string, error)

	// CreateSession inserts a session row. A failure here aborts the
	// login; no local session may be written without a remote record.
	CreateSession(ctx context.Context, session core.Session) error

	// ValidateSession reports whether a matching, non-expired session
	// row exists for the nonce/address pair.
	ValidateSession(ctx context.Context, nonce, walletAddress string) (bool, error)

	// DeleteSession removes the session row for the nonce. Best effort
	// on logout; failures must not block client-side cleanup.
	DeleteSession(ctx context.Context, nonce string) error

	// LogActivity appends an audit entry. Failures are logged by the
	// caller but never block the primary flow.
	LogActivity(ctx context.Context, userID, walletAddress, action, userAgent string) error
}
