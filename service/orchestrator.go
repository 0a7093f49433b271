// Package service contains the auth orchestrator: the state machine
// tying wallet events, challenge signing, the remote registrar and the
// local session store together.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
	"github.com/goalguru/walletauth/siwe"
)

// User-facing messages surfaced through AuthState.AuthError.
const (
	msgRejected     = "Signature request was rejected. Please try again."
	msgAuthFailed   = "Authentication failed. Please try again."
	msgConnectFirst = "Please connect your wallet first"
)

// Config carries the orchestrator's fixed parameters.
type Config struct {
	// Domain and URI are bound into every challenge.
	Domain string
	URI    string

	// UserAgent is recorded with audit-log entries.
	UserAgent string

	// SessionTTL defaults to core.SessionDuration (24h).
	SessionTTL time.Duration

	// ErrorTTL is the auth-error display window, default 5s.
	ErrorTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = core.SessionDuration
	}
	if c.ErrorTTL <= 0 {
		c.ErrorTTL = 5 * time.Second
	}
	if c.Domain == "" {
		c.Domain = "localhost"
	}
	if c.URI == "" {
		c.URI = "http://localhost:3000"
	}
}

// Orchestrator owns the session lifecycle. It is the only component that
// mutates sessions; the store and registrar are passive collaborators.
//
// All public methods are safe for concurrent use. Login failures never
// propagate as errors: they surface as a transient AuthError string and
// a reversion to the anonymous state.
type Orchestrator struct {
	cfg       Config
	wallet    ports.Wallet
	store     ports.SessionStore
	registrar ports.Registrar
	guard     ports.ReplayGuard
	events    ports.EventPublisher
	log       *zap.Logger

	mu        sync.Mutex
	state     core.AuthState
	attempted bool   // login already attempted for this connection episode
	loginGen  uint64 // bumped by logout/switch to supersede an in-flight login
	errTimer  *time.Timer

	startOnce sync.Once
}

// New wires an orchestrator. guard and events may be nil; the
// corresponding steps are skipped.
func New(cfg Config, wallet ports.Wallet, store ports.SessionStore, registrar ports.Registrar, guard ports.ReplayGuard, events ports.EventPublisher, log *zap.Logger) *Orchestrator {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		wallet:    wallet,
		store:     store,
		registrar: registrar,
		guard:     guard,
		events:    events,
		log:       log,
	}
}

// State returns a snapshot of the exposed authentication state.
func (o *Orchestrator) State() core.AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := o.state
	if state.Session != nil {
		session := *state.Session
		state.Session = &session
	}
	return state
}

// Start performs the startup reconciliation: a locally valid session is
// trusted only if the registrar still recognizes it. A remote miss
// silently clears local state; it is not an error.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		session, ok := o.store.Get()
		if !ok {
			return
		}

		valid, err := o.registrar.ValidateSession(ctx, session.Nonce, session.WalletAddress)
		if err != nil {
			o.log.Warn("remote session validation failed", zap.Error(err))
		}
		if !valid {
			o.store.Clear()
			return
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		o.state = core.AuthState{
			IsAuthenticated: true,
			UserID:          session.UserID,
			Session:         &session,
		}
		o.attempted = true
		o.log.Info("session restored", zap.String("address", session.WalletAddress))
	})
}

// Run dispatches wallet events to the state machine until the context is
// cancelled. Intended to be run on its own goroutine.
func (o *Orchestrator) Run(ctx context.Context) {
	o.Start(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-o.wallet.Events():
			if !open {
				return
			}
			o.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent maps one discrete wallet event to its state transition.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev core.WalletEvent) {
	switch ev.Kind {
	case core.WalletConnected:
		o.handleConnected(ctx, ev.Address)
	case core.WalletAddressChanged:
		o.handleAddressChanged(ev.Address)
	case core.WalletDisconnected:
		o.handleDisconnected(ctx)
	}
}

func (o *Orchestrator) handleConnected(ctx context.Context, address string) {
	o.Start(ctx)

	addr := core.NormalizeAddress(address)

	o.mu.Lock()
	// Already authenticated for this wallet.
	if o.state.IsAuthenticated && o.state.Session != nil && o.state.Session.WalletAddress == addr {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	// Restore a still-valid local session for this specific wallet
	// without re-signing.
	if session, ok := o.store.Get(); ok && session.WalletAddress == addr {
		o.mu.Lock()
		o.state = core.AuthState{
			IsAuthenticated: true,
			UserID:          session.UserID,
			Session:         &session,
		}
		o.attempted = true
		o.mu.Unlock()
		o.log.Info("session restored on connect", zap.String("address", addr))
		return
	}

	// One login per connection episode: a repeated connect event must
	// not re-trigger the signature prompt.
	o.mu.Lock()
	if o.attempted || o.state.IsAuthenticating {
		o.mu.Unlock()
		return
	}
	o.attempted = true
	o.mu.Unlock()

	o.Login(ctx)
}

func (o *Orchestrator) handleAddressChanged(address string) {
	addr := core.NormalizeAddress(address)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Session == nil || o.state.Session.WalletAddress == addr {
		return
	}

	// Wallet switched: the old session no longer matches the connected
	// account. Clear it and re-arm login eligibility. An attempt still
	// suspended at the prompt keeps its gate and is superseded.
	o.store.Clear()
	o.state = core.AuthState{IsAuthenticating: o.state.IsAuthenticating}
	o.attempted = false
	o.loginGen++
	o.log.Info("wallet switched, session cleared", zap.String("address", addr))
}

func (o *Orchestrator) handleDisconnected(ctx context.Context) {
	o.mu.Lock()
	authenticated := o.state.IsAuthenticated
	o.mu.Unlock()

	if authenticated {
		o.Logout(ctx)
	}

	o.mu.Lock()
	o.attempted = false
	o.mu.Unlock()
}

// Login runs the challenge-response sequence. Redundant calls are safe:
// an attempt already in flight owns the outcome and later calls return
// immediately. Failures surface through AuthState.AuthError.
func (o *Orchestrator) Login(ctx context.Context) {
	if !o.wallet.Connected() {
		o.setError(msgConnectFirst, false)
		return
	}

	addr := core.NormalizeAddress(o.wallet.Address())

	o.mu.Lock()
	if o.state.IsAuthenticated && o.state.Session != nil && o.state.Session.WalletAddress == addr {
		o.mu.Unlock()
		return
	}
	if o.state.IsAuthenticating {
		// The in-flight attempt owns the outcome.
		o.mu.Unlock()
		return
	}
	o.state.IsAuthenticating = true
	o.state.AuthError = ""
	o.loginGen++
	gen := o.loginGen
	o.mu.Unlock()

	session, err := o.runLogin(ctx)

	o.mu.Lock()
	if gen != o.loginGen {
		// A logout or wallet switch superseded this attempt while it
		// was waiting at the wallet prompt. The user's cleanup wins:
		// drop the result and undo any writes the attempt made.
		o.state.IsAuthenticating = false
		o.mu.Unlock()
		if err == nil {
			o.store.Clear()
			if derr := o.registrar.DeleteSession(ctx, session.Nonce); derr != nil {
				o.log.Warn("failed to delete superseded session", zap.Error(derr))
			}
		}
		o.log.Info("login attempt superseded")
		return
	}
	if err != nil {
		o.mu.Unlock()
		o.failLogin(ctx, err)
		return
	}

	// Committing the fresh state also drops IsAuthenticating; clearing
	// the flag separately would open a window for a duplicate attempt.
	o.state = core.AuthState{
		IsAuthenticated: true,
		UserID:          session.UserID,
		Session:         &session,
	}
	o.attempted = true
	o.mu.Unlock()

	o.log.Info("login complete",
		zap.String("address", session.WalletAddress),
		zap.String("user_id", session.UserID))
}

// runLogin executes the strictly sequential login steps. Any failure
// aborts the whole sequence; no local session is written unless the
// remote record was committed first.
func (o *Orchestrator) runLogin(ctx context.Context) (core.Session, error) {
	address := o.wallet.Address()
	nonce := siwe.GenerateNonce()
	challenge := siwe.NewChallenge(address, nonce, o.cfg.Domain, o.cfg.URI)
	message := challenge.Format()

	signature, err := o.wallet.SignMessage(ctx, message)
	if err != nil {
		return core.Session{}, err
	}

	if !siwe.VerifySignature(message, signature, address) {
		return core.Session{}, core.ErrInvalidSignature
	}

	if o.guard != nil {
		used, err := o.guard.IsUsed(ctx, nonce)
		if err != nil {
			o.log.Warn("replay guard check failed", zap.Error(err))
		} else if used {
			return core.Session{}, core.ErrInvalidNonce
		}
	}

	addr := core.NormalizeAddress(address)

	userID, err := o.registrar.FindOrCreateUser(ctx, addr)
	if err != nil {
		return core.Session{}, err
	}

	now := time.Now()
	session := core.Session{
		UserID:        userID,
		WalletAddress: addr,
		Signature:     signature,
		Message:       message,
		Nonce:         nonce,
		ExpiresAt:     now.Add(o.cfg.SessionTTL),
		CreatedAt:     now,
	}

	if err := o.registrar.CreateSession(ctx, session); err != nil {
		return core.Session{}, err
	}

	if o.guard != nil {
		if err := o.guard.MarkUsed(ctx, nonce, o.cfg.SessionTTL); err != nil {
			o.log.Warn("failed to mark nonce used", zap.Error(err))
		}
	}

	if err := o.registrar.LogActivity(ctx, userID, addr, ports.ActionLogin, o.cfg.UserAgent); err != nil {
		o.log.Warn("failed to log login activity", zap.Error(err))
	}

	if o.events != nil {
		if err := o.events.PublishLogin(ctx, addr, userID, nonce); err != nil {
			o.log.Warn("failed to publish login event", zap.Error(err))
		}
	}

	o.store.Store(session)
	return session, nil
}

func (o *Orchestrator) failLogin(ctx context.Context, err error) {
	rejected := isRejection(err)
	o.log.Warn("login failed", zap.Error(err), zap.Bool("rejected", rejected))

	if rejected {
		o.setError(msgRejected, true)
		if derr := o.wallet.Disconnect(ctx); derr != nil {
			o.log.Debug("wallet disconnect after rejection failed", zap.Error(derr))
		}
	} else {
		o.setError(msgAuthFailed, true)
	}
}

// setError reverts to the anonymous state with a transient error that
// clears itself after the display window. rearm resets the per-episode
// login gate so the user can try again.
func (o *Orchestrator) setError(message string, rearm bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state.IsAuthenticated = false
	o.state.IsAuthenticating = false
	o.state.Session = nil
	o.state.UserID = ""
	o.state.AuthError = message
	if rearm {
		o.attempted = false
	}

	if o.errTimer != nil {
		o.errTimer.Stop()
	}
	o.errTimer = time.AfterFunc(o.cfg.ErrorTTL, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.state.AuthError = ""
	})
}

// Logout clears local and remote session state. Remote cleanup is best
// effort: audit-log and delete failures never block the user from
// disconnecting. Safe to call when already anonymous.
func (o *Orchestrator) Logout(ctx context.Context) {
	o.mu.Lock()
	userID := o.state.UserID
	var address, nonce string
	if o.state.Session != nil {
		address = o.state.Session.WalletAddress
		nonce = o.state.Session.Nonce
	}
	o.mu.Unlock()

	if userID != "" {
		if err := o.registrar.LogActivity(ctx, userID, address, ports.ActionLogout, o.cfg.UserAgent); err != nil {
			o.log.Warn("failed to log logout activity", zap.Error(err))
		}
		if nonce != "" {
			if err := o.registrar.DeleteSession(ctx, nonce); err != nil {
				o.log.Warn("failed to delete remote session", zap.Error(err))
			}
		}
		if o.events != nil {
			if err := o.events.PublishLogout(ctx, address, userID); err != nil {
				o.log.Warn("failed to publish logout event", zap.Error(err))
			}
		}
	}

	o.store.Clear()

	o.mu.Lock()
	defer o.mu.Unlock()
	// Only a login attempt may clear its own IsAuthenticating flag; a
	// logout racing a suspended attempt keeps the gate closed and bumps
	// the generation so the attempt discards its result on resume.
	o.state = core.AuthState{IsAuthenticating: o.state.IsAuthenticating}
	o.attempted = false
	o.loginGen++
}

// CheckAuth re-reads the local session slot and syncs the exposed state
// with it.
func (o *Orchestrator) CheckAuth() {
	session, ok := o.store.Get()

	o.mu.Lock()
	defer o.mu.Unlock()

	if ok {
		o.state.IsAuthenticated = true
		o.state.UserID = session.UserID
		o.state.Session = &session
	} else {
		o.state.IsAuthenticated = false
		o.state.UserID = ""
		o.state.Session = nil
	}
}

// ClearError dismisses the transient auth error immediately.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.errTimer != nil {
		o.errTimer.Stop()
		o.errTimer = nil
	}
	o.state.AuthError = ""
}

// isRejection classifies a signing failure as a user rejection. The
// structured sentinel is preferred; the substring match is a fallback
// for providers that only expose error text.
func isRejection(err error) bool {
	if errors.Is(err, core.ErrUserRejected) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "rejected")
}
