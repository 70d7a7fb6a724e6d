package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mux *http.ServeMux

	token       string
	password    string
	user        User
	currentHits int
	reject401   bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{
		mux:      http.NewServeMux(),
		token:    "tok-123",
		password: "admin123",
		user: User{ID: 1, Username: "admin", Name: "管理员", Roles: []Role{
			{ID: 1, Name: "管理员", Code: "admin", Status: 1, Permissions: []Permission{
				perm("user:view", 1), perm("user:create", 1),
			}},
		}},
	}
	b.mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username, Password string
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != b.user.Username || req.Password != b.password {
			writeEnvelope(w, 401, "invalid username or password", nil)
			return
		}
		writeEnvelope(w, 200, "success", map[string]any{"token": b.token, "user": b.user})
	})
	b.mux.HandleFunc("/users/current", func(w http.ResponseWriter, r *http.Request) {
		b.currentHits++
		if b.reject401 || r.Header.Get("Authorization") != "Bearer "+b.token {
			writeEnvelope(w, 401, "token invalid or expired", nil)
			return
		}
		writeEnvelope(w, 200, "success", b.user)
	})
	b.mux.HandleFunc("/users/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, "logged out", nil)
	})
	server := httptest.NewServer(b.mux)
	t.Cleanup(server.Close)
	return b, server
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message, "data": data})
}

func TestLoginPersistsSession(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()
	manager := NewSessionManager(NewClient(server.URL, nil), storage)

	session, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, "tok-123", session.Token)
	require.Equal(t, "admin", session.User.Username)
	require.WithinDuration(t, time.Now().Add(DefaultTokenTTL), session.ExpiresAt, time.Minute)

	token, expiresAt, err := storage.Load()
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)
	require.False(t, expiresAt.IsZero())
	require.Equal(t, StateAuthenticated, manager.State())
}

func TestFailedLoginLeavesStateUntouched(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()
	manager := NewSessionManager(NewClient(server.URL, nil), storage)

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	_, err = manager.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	session, ok := manager.Current()
	require.True(t, ok, "prior session survives a failed re-login")
	require.Equal(t, "tok-123", session.Token)
}

func TestLogoutClearsDespiteNetworkFailure(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()
	manager := NewSessionManager(NewClient(server.URL, nil), storage)

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	server.Close()
	manager.Logout(context.Background())

	_, ok := manager.Current()
	require.False(t, ok)
	token, _, err := storage.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestExpiredSessionIsNotCurrent(t *testing.T) {
	_, server := newFakeBackend(t)
	now := time.Now()
	clock := &now
	manager := NewSessionManager(NewClient(server.URL, nil), NewMemoryStorage(),
		WithClock(func() time.Time { return *clock }))

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	later := now.Add(DefaultTokenTTL + time.Second)
	*clock = later

	_, ok := manager.Current()
	require.False(t, ok)
	require.True(t, manager.IsExpired())
	require.Equal(t, StateExpired, manager.State())
}

func TestEnsureFreshOutsideWindowSkipsNetwork(t *testing.T) {
	backend, server := newFakeBackend(t)
	manager := NewSessionManager(NewClient(server.URL, nil), NewMemoryStorage())

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	require.True(t, manager.EnsureFresh(context.Background()))
	require.Zero(t, backend.currentHits)
}

func TestEnsureFreshInsideWindowExtends(t *testing.T) {
	backend, server := newFakeBackend(t)
	now := time.Now()
	clock := &now
	manager := NewSessionManager(NewClient(server.URL, nil), NewMemoryStorage(),
		WithClock(func() time.Time { return *clock }))

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	// Advance to 10 minutes before expiry.
	*clock = now.Add(DefaultTokenTTL - 10*time.Minute)
	require.True(t, manager.EnsureFresh(context.Background()))
	require.Equal(t, 1, backend.currentHits)

	session, ok := manager.Current()
	require.True(t, ok)
	require.WithinDuration(t, clock.Add(DefaultTokenTTL), session.ExpiresAt, time.Minute)
}

func TestEnsureFreshExpiredClears(t *testing.T) {
	_, server := newFakeBackend(t)
	now := time.Now()
	clock := &now
	storage := NewMemoryStorage()
	manager := NewSessionManager(NewClient(server.URL, nil), storage,
		WithClock(func() time.Time { return *clock }))

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	*clock = now.Add(DefaultTokenTTL + time.Minute)
	require.False(t, manager.EnsureFresh(context.Background()))

	token, _, err := storage.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestUnauthorizedInterceptorClearsOnce(t *testing.T) {
	backend, server := newFakeBackend(t)
	storage := NewMemoryStorage()
	now := time.Now()
	clock := &now
	manager := NewSessionManager(NewClient(server.URL, nil), storage,
		WithClock(func() time.Time { return *clock }))

	_, err := manager.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	// Backend starts rejecting the token (revoked elsewhere). Push the
	// session into the refresh window so EnsureFresh goes remote.
	backend.reject401 = true
	*clock = now.Add(DefaultTokenTTL - 10*time.Minute)
	require.False(t, manager.EnsureFresh(context.Background()))

	_, ok := manager.Current()
	require.False(t, ok)
	token, _, err := storage.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestRestoreFromStorage(t *testing.T) {
	backend, server := newFakeBackend(t)
	path := filepath.Join(t.TempDir(), "session.json")
	storage := NewFileStorage(path)

	first := NewSessionManager(NewClient(server.URL, nil), storage)
	_, err := first.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	// A fresh manager over the same storage picks up the token and
	// hydrates the user even though the token is nowhere near expiry.
	second := NewSessionManager(NewClient(server.URL, nil), storage)
	require.True(t, second.EnsureFresh(context.Background()))
	require.Equal(t, 1, backend.currentHits)

	session, ok := second.Current()
	require.True(t, ok)
	require.Equal(t, "tok-123", session.Token)
	require.Equal(t, "admin", session.User.Username)
	require.NotEmpty(t, session.User.Roles)
}

func TestRestoredSessionAuthorizesThroughGuard(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()

	first := NewSessionManager(NewClient(server.URL, nil), storage)
	_, err := first.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	second := NewSessionManager(NewClient(server.URL, nil), storage)
	require.True(t, second.EnsureFresh(context.Background()))

	guard := NewGuard(second, nil)
	require.True(t, guard.Can("user:view"))
	require.False(t, guard.Can("user:delete"))
}

func TestRestoreHydrationKeepsStoredExpiry(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()

	first := NewSessionManager(NewClient(server.URL, nil), storage)
	_, err := first.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	_, storedExpiry, err := storage.Load()
	require.NoError(t, err)

	// Outside the refresh window the backend does not slide its token
	// record, so the hydration fetch must not advance the local expiry.
	second := NewSessionManager(NewClient(server.URL, nil), storage)
	require.True(t, second.EnsureFresh(context.Background()))
	session, ok := second.Current()
	require.True(t, ok)
	require.Equal(t, storedExpiry.Unix(), session.ExpiresAt.Unix())
}

func TestRestoreIgnoresExpiredToken(t *testing.T) {
	_, server := newFakeBackend(t)
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save("stale", time.Now().Add(-time.Hour)))

	manager := NewSessionManager(NewClient(server.URL, nil), storage)
	_, ok := manager.Current()
	require.False(t, ok)
	token, _, err := storage.Load()
	require.NoError(t, err)
	require.Empty(t, token)
}
