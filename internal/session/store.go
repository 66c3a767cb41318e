// Package session persists the signed-in session and keeps it fresh.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/storage"
	"github.com/attendflow/attendflow/internal/transport"
)

// Persisted keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Store keeps the tokens and the signed-in user in a storage.Storage.
type Store struct {
	storage storage.Storage
	now     func() time.Time
}

// NewStore creates a session store over s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s, now: time.Now}
}

// SaveAuth persists the token, refresh token and derived user of a
// successful login. A stale refresh token is dropped when the response
// carried none.
func (s *Store) SaveAuth(ctx context.Context, res *domain.AuthResult) error {
	if err := s.SetTokens(ctx, res.Data.Token, res.Data.RefreshToken); err != nil {
		return err
	}
	return s.SaveUser(ctx, res.User(s.now().UTC().Format(time.RFC3339)))
}

// SetTokens stores the access token and, when non-empty, the refresh token.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.storage.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if refresh == "" {
		if err := s.storage.Delete(ctx, KeyRefreshToken); err != nil {
			return fmt.Errorf("drop refresh token: %w", err)
		}
		return nil
	}
	if err := s.storage.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// SaveUser replaces the stored user.
func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when there is none.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when there is none.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// User returns the stored user, or nil when there is none.
func (s *Store) User(ctx context.Context) (*domain.User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// ClearTokens removes both tokens and keeps the user.
func (s *Store) ClearTokens(ctx context.Context) error {
	return s.remove(ctx, KeyAccessToken, KeyRefreshToken)
}

// Clear removes every session key.
func (s *Store) Clear(ctx context.Context) error {
	return s.remove(ctx, KeyAccessToken, KeyRefreshToken, KeyUser)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) remove(ctx context.Context, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := s.storage.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

var _ transport.TokenSource = (*Store)(nil)
