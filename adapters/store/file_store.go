// Package store provides single-slot local session persistence.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// FileStore keeps the session slot in a JSON file, the client-local
// analog of browser storage. An empty path disables persistence: every
// operation degrades to a no-op reporting no session.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

// NewFileStore creates a file-backed session store at path.
func NewFileStore(path string, log *zap.Logger) ports.SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}

// Store overwrites the slot unconditionally. Write failures are logged
// and swallowed; a broken disk must not fault the auth flow.
func (s *FileStore) Store(session core.Session) {
	if s.path == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		s.log.Warn("marshal session", zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Warn("create session dir", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Warn("write session", zap.Error(err))
	}
}

// Get reads the slot. Absence, corruption and expiry all report no
// session; expired records are cleared on the way out.
func (s *FileStore) Get() (core.Session, bool) {
	if s.path == "" {
		return core.Session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("read session", zap.Error(err))
		}
		return core.Session{}, false
	}

	var session core.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.log.Warn("decode session", zap.Error(err))
		return core.Session{}, false
	}

	if !session.Valid(time.Now()) {
		s.removeLocked()
		return core.Session{}, false
	}

	return session, true
}

// IsValid reports whether a stored, unexpired session exists.
func (s *FileStore) IsValid() bool {
	_, ok := s.Get()
	return ok
}

// Clear removes the slot. Idempotent.
func (s *FileStore) Clear() {
	if s.path == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked()
}

func (s *FileStore) removeLocked() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("remove session", zap.Error(err))
	}
}
