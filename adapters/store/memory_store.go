package store

import (
	"sync"
	"time"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// MemoryStore is an in-memory session slot for tests and embedded use.
type MemoryStore struct {
	mu      sync.RWMutex
	session core.Session
	present bool
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() ports.SessionStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Store(session core.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.present = true
}

func (s *MemoryStore) Get() (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return core.Session{}, false
	}

	if !s.session.Valid(time.Now()) {
		s.session = core.Session{}
		s.present = false
		return core.Session{}, false
	}

	return s.session, true
}

func (s *MemoryStore) IsValid() bool {
	_, ok := s.Get()
	return ok
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = core.Session{}
	s.present = false
}
