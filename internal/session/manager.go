package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/transport"
)

// State is the lifecycle state of a Manager.
type State int

const (
	Unauthenticated State = iota
	Initializing
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	}
	return "unauthenticated"
}

// Refresh window. A token is refreshed RefreshLead before it expires, and
// only when it expires within RefreshHorizon.
const (
	RefreshLead    = 5 * time.Minute
	RefreshHorizon = time.Hour
)

// Authenticator performs the remote auth calls. Implementations persist
// the session into the Store themselves.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, req domain.Registration) (*domain.AuthResult, error)
	Refresh(ctx context.Context) (*domain.TokenPair, error)
	Logout(ctx context.Context) error
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manager tracks the signed-in session and refreshes its token ahead of
// expiry. Every token change bumps a generation counter; a scheduled
// refresh only runs if the generation it was created for is still current.
type Manager struct {
	auth      Authenticator
	store     *Store
	logger    *slog.Logger
	now       func() time.Time
	afterFunc AfterFunc

	mu         sync.Mutex
	state      State
	user       *domain.User
	token      string
	generation uint64
	timer      Timer
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock injects the time source used for expiry checks.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithAfterFunc injects the scheduler used for refresh timers.
func WithAfterFunc(f AfterFunc) ManagerOption {
	return func(m *Manager) { m.afterFunc = f }
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager in the Unauthenticated state.
func NewManager(auth Authenticator, store *Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		auth:      auth,
		store:     store,
		logger:    slog.Default(),
		now:       time.Now,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores a persisted session. A missing, unparseable or expired
// token clears the persisted data.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	m.state = Initializing
	m.mu.Unlock()

	token, err := m.store.AccessToken(ctx)
	if err != nil {
		m.reset()
		return err
	}
	user, err := m.store.User(ctx)
	if err != nil || token == "" || user == nil {
		m.logger.Debug("no usable stored session", "error", err)
		return m.discard(ctx)
	}

	exp, err := TokenExpiry(token)
	if err != nil {
		m.logger.Info("stored token unreadable, clearing session", "error", err)
		return m.discard(ctx)
	}
	if !exp.After(m.now()) {
		m.logger.Info("stored token expired, clearing session", "expired_at", exp)
		return m.discard(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Authenticated
	m.user = user
	m.token = token
	m.scheduleLocked(token)
	m.logger.Info("session restored", "username", user.Username)
	return nil
}

func (m *Manager) discard(ctx context.Context) error {
	m.reset()
	return m.store.Clear(ctx)
}

// Login authenticates and adopts the persisted session.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) error {
	if _, err := m.auth.Login(ctx, creds); err != nil {
		m.reset()
		return err
	}
	return m.adopt(ctx)
}

// Register signs up and adopts the persisted session.
func (m *Manager) Register(ctx context.Context, req domain.Registration) error {
	if _, err := m.auth.Register(ctx, req); err != nil {
		m.reset()
		return err
	}
	return m.adopt(ctx)
}

func (m *Manager) adopt(ctx context.Context) error {
	token, err := m.store.AccessToken(ctx)
	if err != nil {
		m.reset()
		return err
	}
	user, err := m.store.User(ctx)
	if err != nil {
		m.reset()
		return err
	}
	if token == "" || user == nil {
		m.reset()
		return domain.ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Authenticated
	m.user = user
	m.token = token
	m.scheduleLocked(token)
	m.logger.Info("login successful", "username", user.Username)
	return nil
}

// Refresh refreshes the token on demand. Any failure ends the session.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Authenticated {
		m.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	m.state = Refreshing
	gen := m.generation
	m.mu.Unlock()

	pair, err := m.auth.Refresh(ctx)

	m.mu.Lock()
	if gen != m.generation {
		// Logged out or re-authenticated while the call was in flight.
		m.mu.Unlock()
		if err != nil {
			return err
		}
		return domain.ErrNotAuthenticated
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("token refresh failed, logging out", "error", err)
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			m.logger.Debug("logout after refresh failure", "error", logoutErr)
		}
		return err
	}
	defer m.mu.Unlock()
	m.state = Authenticated
	m.token = pair.Token
	m.scheduleLocked(pair.Token)
	return nil
}

// Logout clears local state first, then asks the backend to end the
// session. The remote error is returned for reporting only.
func (m *Manager) Logout(ctx context.Context) error {
	m.reset()

	err := m.auth.Logout(ctx)
	if clearErr := m.store.Clear(ctx); clearErr != nil {
		m.logger.Warn("clear stored session", "error", clearErr)
	}
	if err != nil {
		m.logger.Warn("remote logout failed", "error", err)
	}
	return err
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current access token.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuthenticated reports whether a user and token are held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.token != ""
}

// Close cancels any pending refresh.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Manager) resetLocked() {
	m.cancelLocked()
	m.state = Unauthenticated
	m.user = nil
	m.token = ""
}

// cancelLocked invalidates the pending refresh, if any.
func (m *Manager) cancelLocked() {
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// scheduleLocked replaces the pending refresh with one for token.
func (m *Manager) scheduleLocked(token string) {
	m.cancelLocked()

	if IsPlaceholderToken(token) {
		m.logger.Warn("placeholder token in use, automatic refresh disabled")
		return
	}

	exp, err := TokenExpiry(token)
	if err != nil {
		m.logger.Debug("token expiry unknown, refresh not scheduled", "error", err)
		return
	}

	remaining := exp.Sub(m.now())
	if remaining <= RefreshLead || remaining >= RefreshHorizon {
		return
	}

	gen := m.generation
	delay := remaining - RefreshLead
	m.timer = m.afterFunc(delay, func() { m.autoRefresh(gen) })
	m.logger.Info("token refresh scheduled", "in", delay.Round(time.Second))
}

// autoRefresh runs when a refresh timer fires. A failure keeps the session
// unless it can no longer be refreshed.
func (m *Manager) autoRefresh(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != Authenticated {
		m.mu.Unlock()
		return
	}
	m.state = Refreshing
	m.mu.Unlock()

	pair, err := m.auth.Refresh(context.Background())

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	if err != nil {
		if sessionEnding(err) {
			m.logger.Warn("token refresh rejected, session ended", "error", err)
			m.resetLocked()
			return
		}
		m.logger.Warn("automatic token refresh failed", "error", err)
		m.state = Authenticated
		return
	}

	m.state = Authenticated
	m.token = pair.Token
	m.scheduleLocked(pair.Token)
}

// sessionEnding reports refresh failures after which the stored session
// is gone.
func sessionEnding(err error) bool {
	return errors.Is(err, domain.ErrNoRefreshToken) ||
		errors.Is(err, domain.ErrPlaceholderRefreshToken) ||
		errors.Is(err, transport.ErrUnauthorized) ||
		errors.Is(err, transport.ErrForbidden)
}
