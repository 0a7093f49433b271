package registrar

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// ActivityEntry is one audit-log row held by the memory registrar.
type ActivityEntry struct {
	UserID        string
	WalletAddress string
	Action        string
	UserAgent     string
	At            time.Time
}

// MemoryRegistrar is a map-backed registrar for tests and dev mode.
type MemoryRegistrar struct {
	mu       sync.Mutex
	users    map[string]string // wallet address -> user id
	sessions map[string]core.Session
	activity []ActivityEntry
}

// NewMemoryRegistrar creates an empty in-memory registrar.
func NewMemoryRegistrar() *MemoryRegistrar {
	return &MemoryRegistrar{
		users:    make(map[string]string),
		sessions: make(map[string]core.Session),
	}
}

var _ ports.Registrar = (*MemoryRegistrar)(nil)

func (r *MemoryRegistrar) FindOrCreateUser(ctx context.Context, walletAddress string) (string, error) {
	address := core.NormalizeAddress(walletAddress)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.users[address]; ok {
		return id, nil
	}

	id := uuid.New().String()
	r.users[address] = id
	return id, nil
}

func (r *MemoryRegistrar) CreateSession(ctx context.Context, session core.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.WalletAddress = core.NormalizeAddress(session.WalletAddress)
	r.sessions[session.Nonce] = session
	return nil
}

func (r *MemoryRegistrar) ValidateSession(ctx context.Context, nonce, walletAddress string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[nonce]
	if !ok {
		return false, nil
	}
	if session.WalletAddress != core.NormalizeAddress(walletAddress) {
		return false, nil
	}
	return session.Valid(time.Now()), nil
}

func (r *MemoryRegistrar) DeleteSession(ctx context.Context, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, nonce)
	return nil
}

func (r *MemoryRegistrar) LogActivity(ctx context.Context, userID, walletAddress, action, userAgent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activity = append(r.activity, ActivityEntry{
		UserID:        userID,
		WalletAddress: core.NormalizeAddress(walletAddress),
		Action:        action,
		UserAgent:     userAgent,
		At:            time.Now(),
	})
	return nil
}

// SessionCount reports the number of stored session rows.
func (r *MemoryRegistrar) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Activity returns a copy of the audit log.
func (r *MemoryRegistrar) Activity() []ActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ActivityEntry(nil), r.activity...)
}

// DropSessions removes all session rows, simulating remote expiry or an
// out-of-band wipe.
func (r *MemoryRegistrar) DropSessions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]core.Session)
}
