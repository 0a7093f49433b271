package core

// AuthState is the authentication state exposed to the rest of the
// application. It is derived, never persisted.
//
// IsAuthenticating acts as a mutual-exclusion flag: at most one login
// attempt is in flight at a time. AuthError is transient and auto-clears
// after the configured display window.
type AuthState struct {
	IsAuthenticated  bool     `json:"isAuthenticated"`
	IsAuthenticating bool     `json:"isAuthenticating"`
	UserID           string   `json:"userId,omitempty"`
	Session          *Session `json:"session,omitempty"`
	AuthError        string   `json:"authError,omitempty"`
}
