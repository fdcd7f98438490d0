package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

const persistTimeout = 5 * time.Second

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, reg models.Registration) error
}

// TokenStore persists the bearer credential across restarts. Load returns an empty
// token when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Manager owns the authentication credential and its lifecycle.
type Manager struct {
	auth   Authenticator
	store  TokenStore
	logger *zap.Logger

	mu           sync.RWMutex
	token        string
	logoutReason string
	listeners    []func(reason string)
}

// NewManager creates a session manager. store may be nil, in which case the token
// only lives in memory.
func NewManager(auth Authenticator, store TokenStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{auth: auth, store: store, logger: logger}
}

// Restore loads a previously persisted token. It stays valid until the server rejects it.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	token, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.token = strings.TrimSpace(token)
	restored := m.token != ""
	m.mu.Unlock()

	if restored {
		m.logger.Info("session restored from token store")
	}
	return nil
}

// Login exchanges credentials for a token and starts a session. A failed attempt
// leaves the current session untouched.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	creds.Login = strings.TrimSpace(creds.Login)
	if creds.Login == "" || creds.Password == "" {
		return models.Session{}, models.NewErrorReport(models.ErrorValidation, "login and password are required")
	}

	token, err := m.auth.Login(ctx, creds)
	if err != nil {
		report := models.AsErrorReport(err)
		m.logger.Info("login rejected", zap.String("login", creds.Login), zap.String("kind", string(report.Kind)))
		return models.Session{}, report
	}

	m.mu.Lock()
	m.token = token
	m.logoutReason = ""
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(ctx, token); err != nil {
			m.logger.Warn("failed to persist token", zap.Error(err))
		}
	}

	m.logger.Info("login succeeded", zap.String("login", creds.Login))
	return models.Session{Token: token}, nil
}

// Register creates a backend user without logging in.
func (m *Manager) Register(ctx context.Context, reg models.Registration) error {
	reg.Login = strings.TrimSpace(reg.Login)
	if reg.Login == "" || reg.Password == "" {
		return models.NewErrorReport(models.ErrorValidation, "login and password are required")
	}
	if err := m.auth.Register(ctx, reg); err != nil {
		return models.AsErrorReport(err)
	}
	return nil
}

// Logout clears the session and records reason for display. Listeners are told
// only when a session was actually active.
func (m *Manager) Logout(reason string) {
	m.mu.Lock()
	wasActive := m.token != ""
	m.token = ""
	m.logoutReason = reason
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	if m.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("failed to clear persisted token", zap.Error(err))
		}
		cancel()
	}

	if !wasActive {
		return
	}

	m.logger.Info("session ended", zap.String("reason", reason))
	for _, fn := range listeners {
		fn(reason)
	}
}

// Invalidate ends the session after the server rejected the credential.
func (m *Manager) Invalidate(report *models.ErrorReport) {
	reason := "session expired, please log in again"
	if report != nil && report.Message != "" {
		reason = report.Message
	}
	m.Logout(reason)
}

// CurrentToken returns the bearer credential, if any.
func (m *Manager) CurrentToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Session returns a copy of the current session state.
func (m *Manager) Session() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Session{Token: m.token}
}

// LogoutReason is the reason recorded by the most recent logout.
func (m *Manager) LogoutReason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logoutReason
}

// OnLogout registers fn to run whenever an active session ends.
func (m *Manager) OnLogout(fn func(reason string)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
