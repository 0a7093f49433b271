// Package wallet provides wallet-provider adapters. LocalWallet is an
// in-process secp256k1 signer used by the dev daemon and tests; real
// deployments plug a remote wallet provider into ports.Wallet.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// LocalWallet holds a private key in memory and signs challenges with it.
// Connect, Disconnect and SwitchKey emit the corresponding wallet events.
type LocalWallet struct {
	mu        sync.Mutex
	key       *ecdsa.PrivateKey
	address   string
	connected bool
	reject    bool
	events    chan core.WalletEvent
}

var _ ports.Wallet = (*LocalWallet)(nil)

// NewLocalWallet creates a wallet from a hex-encoded private key, or a
// freshly generated key when hexKey is empty. The wallet starts
// disconnected.
func NewLocalWallet(hexKey string) (*LocalWallet, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)
	if hexKey == "" {
		key, err = crypto.GenerateKey()
	} else {
		key, err = crypto.HexToECDSA(hexKey)
	}
	if err != nil {
		return nil, fmt.Errorf("load wallet key: %w", err)
	}

	return &LocalWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
		events:  make(chan core.WalletEvent, 8),
	}, nil
}

// Connect marks the wallet connected and emits WalletConnected.
func (w *LocalWallet) Connect() {
	w.mu.Lock()
	w.connected = true
	addr := w.address
	w.mu.Unlock()

	w.emit(core.WalletEvent{Kind: core.WalletConnected, Address: addr})
}

// SwitchKey swaps the active key, emitting WalletAddressChanged and a
// follow-up WalletConnected for the new account.
func (w *LocalWallet) SwitchKey(key *ecdsa.PrivateKey) {
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w.mu.Lock()
	w.key = key
	w.address = addr
	connected := w.connected
	w.mu.Unlock()

	if connected {
		w.emit(core.WalletEvent{Kind: core.WalletAddressChanged, Address: addr})
		w.emit(core.WalletEvent{Kind: core.WalletConnected, Address: addr})
	}
}

// RejectNext makes the next SignMessage call fail as a user rejection.
func (w *LocalWallet) RejectNext() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reject = true
}

func (w *LocalWallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ""
	}
	return w.address
}

func (w *LocalWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// SignMessage personal-signs the message (EIP-191) and returns the
// 65-byte signature hex-encoded with the 27/28 recovery id convention.
func (w *LocalWallet) SignMessage(ctx context.Context, message string) (string, error) {
	w.mu.Lock()
	if w.reject {
		w.reject = false
		w.mu.Unlock()
		return "", core.ErrUserRejected
	}
	key := w.key
	connected := w.connected
	w.mu.Unlock()

	if !connected {
		return "", core.ErrWalletNotConnected
	}

	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// Disconnect drops the connection and emits WalletDisconnected.
func (w *LocalWallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	wasConnected := w.connected
	w.connected = false
	w.mu.Unlock()

	if wasConnected {
		w.emit(core.WalletEvent{Kind: core.WalletDisconnected})
	}
	return nil
}

func (w *LocalWallet) Events() <-chan core.WalletEvent {
	return w.events
}

func (w *LocalWallet) emit(ev core.WalletEvent) {
	select {
	case w.events <- ev:
	default:
		// Buffer full: the newest event is dropped. Wallet events are
		// advisory and the orchestrator re-reads wallet state.
	}
}
