package core

// WalletEventKind identifies a discrete wallet lifecycle event.
type WalletEventKind int

const (
	// WalletConnected fires when an address becomes available.
	WalletConnected WalletEventKind = iota

	// WalletDisconnected fires when the wallet connection is lost.
	WalletDisconnected

	// WalletAddressChanged fires when the connected account switches
	// to a different address.
	WalletAddressChanged
)

// WalletEvent is delivered to the auth orchestrator's transition function.
// Address is set for WalletConnected and WalletAddressChanged.
type WalletEvent struct {
	Kind    WalletEventKind
	Address string
}
