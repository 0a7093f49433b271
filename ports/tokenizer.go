package ports

import "github.com/goalguru/walletauth/core"

// Tokenizer issues and validates the bearer tokens the HTTP surface
// hands to other application components after authentication.
type Tokenizer interface {
	// IssueToken mints a token bound to the session; it expires when
	// the session does.
	IssueToken(session core.Session) (string, error)

	// ParseToken validates a token and returns the wallet address it
	// was issued for.
	ParseToken(token string) (string, error)
}
