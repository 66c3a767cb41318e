// Package auth implements the authentication endpoints of the backend and
// persists the resulting session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/normalize"
	"github.com/attendflow/attendflow/internal/session"
	"github.com/attendflow/attendflow/internal/transport"
)

// Endpoint paths.
const (
	PathLogin          = "/api/v1/auth/login"
	PathRegister       = "/api/v1/auth/register"
	PathLogout         = "/api/v1/auth/logout"
	PathRefresh        = "/api/v1/auth/refresh"
	PathForgotPassword = "/api/v1/auth/forgot-password"
	PathResetPassword  = "/api/v1/auth/reset-password"
	PathProfile        = "/api/v1/user/profile"
	PathChangePassword = "/api/v1/user/change-password"
)

// ErrMissingToken is returned when a successful auth response has no token.
var ErrMissingToken = errors.New("auth response carried no token")

// Service talks to the auth endpoints. Successful logins are persisted in
// the session store, which also feeds the bearer token to the client.
type Service struct {
	client     *transport.Client
	store      *session.Store
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the time source used for token expiry checks and
// defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.normalizer.Now = now
	}
}

// NewService creates an auth service.
func NewService(client *transport.Client, store *session.Store, opts ...Option) *Service {
	s := &Service{
		client:     client,
		store:      store,
		normalizer: &normalize.Normalizer{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates and persists the session.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	resp, err := s.client.Post(ctx, PathLogin, creds, nil)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	res, err := s.authenticate(ctx, resp, "login failed")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.logger.Info("login successful", "username", res.Data.Username, "employee_id", res.Data.EmployeeID)
	return res, nil
}

// Register creates an account and persists the resulting session.
func (s *Service) Register(ctx context.Context, req domain.Registration) (*domain.AuthResult, error) {
	resp, err := s.client.Post(ctx, PathRegister, req, nil)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	res, err := s.authenticate(ctx, resp, "registration failed")
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.logger.Info("registration successful", "username", res.Data.Username)
	return res, nil
}

func (s *Service) authenticate(ctx context.Context, resp *transport.Response, failure string) (*domain.AuthResult, error) {
	res, err := s.normalizer.Auth(resp.Body)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrRequestRejected, orDefault(res.Message, failure))
	}
	if res.Data.Token == "" {
		return nil, fmt.Errorf("%w: %w", normalize.ErrUnrecognizedFormat, ErrMissingToken)
	}
	if session.IsPlaceholderToken(res.Data.Token) {
		s.logger.Warn("backend confirmed login without a token, using a placeholder")
	}
	if err := s.store.SaveAuth(ctx, res); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return res, nil
}

// Logout clears the stored session and then tells the backend. The local
// session is gone even when the remote call fails.
func (s *Service) Logout(ctx context.Context) error {
	token, err := s.store.AccessToken(ctx)
	if err != nil {
		s.logger.Warn("read access token", "error", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear session", "error", err)
	}
	if token == "" {
		return nil
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	if _, err := s.client.Post(ctx, PathLogout, nil, h); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// Refresh exchanges the stored refresh token for a new token pair. A
// missing or placeholder refresh token, or a 401/403 answer, ends the
// stored session.
func (s *Service) Refresh(ctx context.Context) (*domain.TokenPair, error) {
	refresh, err := s.store.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if refresh == "" {
		s.clear(ctx)
		return nil, domain.ErrNoRefreshToken
	}
	if session.IsPlaceholderRefreshToken(refresh) {
		s.clear(ctx)
		return nil, domain.ErrPlaceholderRefreshToken
	}

	resp, err := s.client.Post(ctx, PathRefresh, map[string]string{"refreshToken": refresh}, nil)
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) || errors.Is(err, transport.ErrForbidden) {
			s.clear(ctx)
		}
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	pair, err := normalize.TokenPair(resp.Body)
	if err != nil {
		return nil, err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refresh
	}
	// The session may have been cleared or replaced while the call was in flight.
	current, err := s.store.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if current != refresh {
		s.logger.Info("session changed during refresh, discarding new tokens")
		return nil, domain.ErrNotAuthenticated
	}
	if err := s.store.SetTokens(ctx, pair.Token, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	s.logger.Info("token refreshed", "expires_in", pair.ExpiresIn)
	return pair, nil
}

func (s *Service) clear(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear session", "error", err)
	}
}

// ForgotPassword asks the backend to mail a reset link and returns its message.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := s.client.Post(ctx, PathForgotPassword, map[string]string{"email": email}, nil)
	if err != nil {
		return "", fmt.Errorf("forgot password: %w", err)
	}
	return acknowledge(resp, "failed to send reset email")
}

// ResetPassword completes a forgot-password flow.
func (s *Service) ResetPassword(ctx context.Context, req domain.PasswordReset) (string, error) {
	if req.NewPassword != req.ConfirmPassword {
		return "", domain.ErrPasswordMismatch
	}
	resp, err := s.client.Post(ctx, PathResetPassword, req, nil)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	return acknowledge(resp, "failed to reset password")
}

// ChangePassword changes the password of the signed-in user.
func (s *Service) ChangePassword(ctx context.Context, req domain.PasswordChange) (string, error) {
	if req.NewPassword != req.ConfirmPassword {
		return "", domain.ErrPasswordMismatch
	}
	resp, err := s.client.Post(ctx, PathChangePassword, req, nil)
	if err != nil {
		return "", fmt.Errorf("change password: %w", err)
	}
	return acknowledge(resp, "failed to change password")
}

// CurrentUser fetches the profile of the signed-in user and refreshes the
// stored copy.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	resp, err := s.client.Get(ctx, PathProfile, nil)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return s.saveProfile(ctx, resp, "failed to get user profile")
}

// UpdateProfile edits the profile of the signed-in user.
func (s *Service) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error) {
	resp, err := s.client.Put(ctx, PathProfile, req, nil)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.saveProfile(ctx, resp, "failed to update profile")
}

func (s *Service) saveProfile(ctx context.Context, resp *transport.Response, failure string) (*domain.User, error) {
	if _, err := acknowledge(resp, failure); err != nil {
		return nil, err
	}
	u, err := s.normalizer.User(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &u, nil
}

// IsAuthenticated reports whether the stored token is a JWT that has not
// expired. An expired or unreadable token clears the stored session.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	token, err := s.store.AccessToken(ctx)
	if err != nil || token == "" {
		return false
	}
	exp, err := session.TokenExpiry(token)
	if err != nil || !exp.After(s.now()) {
		s.logger.Debug("stored token not usable", "error", err)
		s.clear(ctx)
		return false
	}
	return true
}

func acknowledge(resp *transport.Response, failure string) (string, error) {
	ok, msg := normalize.Ack(resp.Body)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrRequestRejected, orDefault(msg, failure))
	}
	return msg, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var _ session.Authenticator = (*Service)(nil)
