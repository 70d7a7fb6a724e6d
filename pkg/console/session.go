package console

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Defaults used when the backend supplies no expiry information.
const (
	DefaultTokenTTL = 2 * time.Hour
	// DefaultRefreshUnder is the low-water mark: a session with less
	// remaining lifetime than this is refreshed on EnsureFresh.
	DefaultRefreshUnder = 30 * time.Minute
)

// SessionState describes the session lifecycle.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
)

// Session is the authenticated console state: the bearer token, its
// local expiry, and the user it belongs to. All or nothing, a session
// never exists with only part of these.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// SessionManager owns the console session. It is the only component
// that writes token storage, and the 401 interceptor funnels into its
// forced clear.
type SessionManager struct {
	client  *Client
	storage TokenStorage
	ttl     time.Duration
	under   time.Duration
	now     func() time.Time

	mu       sync.Mutex
	state    SessionState
	session  *Session
	returnTo string
}

// SessionOption customises a SessionManager.
type SessionOption func(*SessionManager)

// WithTokenTTL overrides the local token lifetime.
func WithTokenTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) { m.ttl = ttl }
}

// WithRefreshUnder overrides the refresh low-water mark.
func WithRefreshUnder(d time.Duration) SessionOption {
	return func(m *SessionManager) { m.under = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

// NewSessionManager builds a SessionManager, restores any persisted
// token from storage, and wires itself into the client's token source
// and 401 interceptor.
func NewSessionManager(client *Client, storage TokenStorage, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		client:  client,
		storage: storage,
		ttl:     DefaultTokenTTL,
		under:   DefaultRefreshUnder,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if token, expiresAt, err := storage.Load(); err == nil && token != "" {
		if expiresAt.After(m.now()) {
			// The user payload is refetched on the next EnsureFresh.
			m.session = &Session{Token: token, ExpiresAt: expiresAt}
			m.state = StateAuthenticated
		} else {
			_ = storage.Clear()
		}
	}

	client.SetTokenSource(m.currentToken)
	client.SetUnauthorizedHook(m.handleUnauthorized)
	return m
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates against the backend. On success the session is
// replaced and persisted; on any failure the prior state is untouched.
func (m *SessionManager) Login(ctx context.Context, username, password string) (Session, error) {
	m.mu.Lock()
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()

	var resp loginResponse
	err := m.client.Post(ctx, "/users/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		m.mu.Lock()
		m.state = prev
		m.mu.Unlock()
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == 401 {
			return Session{}, ErrAuthenticationFailed
		}
		return Session{}, err
	}

	session := Session{
		Token:     resp.Token,
		ExpiresAt: m.now().Add(m.ttl),
		User:      resp.User,
	}

	m.mu.Lock()
	m.session = &session
	m.state = StateAuthenticated
	m.returnTo = ""
	m.mu.Unlock()

	if err := m.storage.Save(session.Token, session.ExpiresAt); err != nil {
		// Persistence failure degrades durability, not the live session.
		return session, nil
	}
	return session, nil
}

// Logout revokes the token remotely on a best-effort basis and clears
// local state unconditionally.
func (m *SessionManager) Logout(ctx context.Context) {
	_ = m.client.Post(ctx, "/users/logout", nil, nil)
	m.clear("")
}

// Current returns the live session. ok is false when no session exists
// or the session has expired locally.
func (m *SessionManager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || !m.now().Before(m.session.ExpiresAt) {
		return Session{}, false
	}
	return *m.session, true
}

// IsExpired reports whether a session exists but has outlived its local
// expiry.
func (m *SessionManager) IsExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && !m.now().Before(m.session.ExpiresAt)
}

// State returns the lifecycle state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && !m.now().Before(m.session.ExpiresAt) {
		return StateExpired
	}
	return m.state
}

// EnsureFresh guarantees the session is usable for an upcoming
// operation. An expired session is cleared. A session inside the
// low-water window re-fetches the current user, which slides the
// backend token and extends the local expiry to now+TTL. A session
// restored from storage re-fetches regardless of remaining lifetime,
// so token+user+roles are complete before any guard decision. Network
// failures leave the session as it was.
func (m *SessionManager) EnsureFresh(ctx context.Context) bool {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return false
	}
	now := m.now()
	if !now.Before(m.session.ExpiresAt) {
		m.mu.Unlock()
		m.clear("")
		return false
	}
	// A session restored from storage holds only the token; it must
	// hydrate the user before guard decisions mean anything, however
	// much lifetime the token still has.
	hydrated := m.session.User.ID != 0
	inWindow := m.session.ExpiresAt.Sub(now) < m.under
	if hydrated && !inWindow {
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	var user User
	if err := m.client.Get(ctx, "/users/current", &user); err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			// Can't tell anything about the session; it is still
			// locally valid.
			return true
		}
		// 401 already cleared the session through the interceptor.
		_, ok := m.Current()
		return ok
	}

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return false
	}
	// Grants stay as captured at login; role changes become visible on
	// the next login, not through a refresh. A restored session has no
	// captured roles yet and adopts the fetched set.
	if len(m.session.User.Roles) > 0 {
		user.Roles = m.session.User.Roles
	}
	m.session.User = user
	// The backend slides its token record only inside the refresh
	// window, so a hydration-only fetch keeps the stored expiry.
	if inWindow {
		m.session.ExpiresAt = m.now().Add(m.ttl)
	}
	token, expiresAt := m.session.Token, m.session.ExpiresAt
	m.mu.Unlock()

	_ = m.storage.Save(token, expiresAt)
	return true
}

// ReturnTo reports the path recorded by the last forced clear, so the
// guard can send the user back after re-login. Reading consumes it.
func (m *SessionManager) ReturnTo() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := m.returnTo
	m.returnTo = ""
	return path
}

func (m *SessionManager) currentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// handleUnauthorized is the 401 interceptor target. The first signal
// clears the session and records the originating path; repeats while
// already cleared are no-ops.
func (m *SessionManager) handleUnauthorized(path string) {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.clear(path)
}

func (m *SessionManager) clear(returnTo string) {
	m.mu.Lock()
	m.session = nil
	m.state = StateUnauthenticated
	if returnTo != "" {
		m.returnTo = returnTo
	}
	m.mu.Unlock()
	_ = m.storage.Clear()
}
