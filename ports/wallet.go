package ports

import (
	"context"

	"github.com/goalguru/walletauth/core"
)

// Wallet is the external wallet connection/signing provider.
//
// SignMessage blocks until the user acts on the prompt in their wallet
// application; there is no system-imposed timeout beyond the context.
// A declined prompt is reported as core.ErrUserRejected where the
// provider can distinguish it.
type Wallet interface {
	// Address returns the currently connected address, or "" when
	// disconnected.
	Address() string

	// Connected reports whether an address is available.
	Connected() bool

	// SignMessage asks the wallet to personal-sign the message and
	// returns the 65-byte signature hex-encoded.
	SignMessage(ctx context.Context, message string) (string, error)

	// Disconnect terminates the wallet connection.
	Disconnect(ctx context.Context) error

	// Events delivers connect/disconnect/switch events.
	Events() <-chan core.WalletEvent
}
