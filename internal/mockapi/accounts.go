package mockapi

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameExists      = errors.New("username already registered")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
)

const (
	tokenIssuer   = "attendflow-mock"
	resetTokenTTL = time.Hour
	minPassword   = 6
)

// Account is a registered login.
type Account struct {
	ID           int64
	EmployeeID   int64
	Username     string
	Email        string
	FullName     string
	PhoneNumber  string
	Avatar       string
	DepartmentID string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  time.Time
}

// Session is an issued token pair.
type Session struct {
	Token        string
	RefreshToken string
	ExpiresIn    time.Duration
}

type resetGrant struct {
	username  string
	expiresAt time.Time
}

// Accounts holds logins with bcrypt password hashes and issues HS256
// access tokens with opaque refresh tokens.
type Accounts struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time

	mu      sync.RWMutex
	nextID  int64
	byName  map[string]*Account
	refresh map[string]string
	resets  map[string]resetGrant
}

// NewAccounts creates an empty account table.
func NewAccounts(secret []byte, tokenTTL time.Duration, bcryptCost int, now func() time.Time) *Accounts {
	return &Accounts{
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        now,
		byName:     make(map[string]*Account),
		refresh:    make(map[string]string),
		resets:     make(map[string]resetGrant),
	}
}

// Create registers an account. a.PasswordHash is ignored.
func (a *Accounts) Create(acc Account, password string) (*Account, error) {
	if len(password) < minPassword {
		return nil, ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := strings.ToLower(acc.Username)
	if _, exists := a.byName[key]; exists {
		return nil, ErrUsernameExists
	}

	a.nextID++
	now := a.now()
	acc.ID = a.nextID
	acc.PasswordHash = string(hashed)
	acc.CreatedAt = now
	acc.UpdatedAt = now
	if acc.Role == "" {
		acc.Role = "USER"
	}
	a.byName[key] = &acc

	out := acc
	return &out, nil
}

// Login checks credentials and issues a session.
func (a *Accounts) Login(username, password string) (*Account, *Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.byName[strings.ToLower(username)]
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := a.issueLocked(acc.Username)
	if err != nil {
		return nil, nil, err
	}
	acc.LastLoginAt = a.now()

	out := *acc
	return &out, sess, nil
}

// Issue creates a session for an existing account.
func (a *Accounts) Issue(username string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byName[strings.ToLower(username)]; !ok {
		return nil, ErrAccountNotFound
	}
	return a.issueLocked(username)
}

func (a *Accounts) issueLocked(username string) (*Session, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	refresh, err := generateToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	a.refresh[refresh] = username

	return &Session{Token: token, RefreshToken: refresh, ExpiresIn: a.tokenTTL}, nil
}

// Verify validates an access token and returns its subject.
func (a *Accounts) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}

	a.mu.RLock()
	_, ok := a.byName[strings.ToLower(claims.Subject)]
	a.mu.RUnlock()
	if !ok {
		return "", ErrAccountNotFound
	}
	return claims.Subject, nil
}

// Refresh rotates a refresh token into a new session.
func (a *Accounts) Refresh(refreshToken string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	username, ok := a.refresh[refreshToken]
	if !ok {
		return nil, ErrInvalidRefreshToken
	}
	delete(a.refresh, refreshToken)
	return a.issueLocked(username)
}

// Revoke drops every refresh token of username.
func (a *Accounts) Revoke(username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for token, owner := range a.refresh {
		if strings.EqualFold(owner, username) {
			delete(a.refresh, token)
		}
	}
}

// Get returns a copy of the account.
func (a *Accounts) Get(username string) (*Account, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := *acc
	return &out, nil
}

// Update applies fn to the account under the write lock.
func (a *Accounts) Update(username string, fn func(*Account)) (*Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	fn(acc)
	acc.UpdatedAt = a.now()
	out := *acc
	return &out, nil
}

// ChangePassword replaces the password after checking the current one.
func (a *Accounts) ChangePassword(username, current, next string) error {
	if len(next) < minPassword {
		return ErrWeakPassword
	}
	acc, err := a.Get(username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	return a.setPassword(username, next)
}

func (a *Accounts) setPassword(username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = a.Update(username, func(acc *Account) { acc.PasswordHash = string(hashed) })
	return err
}

// RequestReset creates a reset token for the account with email. An
// unknown email yields an empty token and no error.
func (a *Accounts) RequestReset(email string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, acc := range a.byName {
		if !strings.EqualFold(acc.Email, email) {
			continue
		}
		token, err := generateToken(24)
		if err != nil {
			return "", fmt.Errorf("generate reset token: %w", err)
		}
		a.resets[token] = resetGrant{username: acc.Username, expiresAt: a.now().Add(resetTokenTTL)}
		return token, nil
	}
	return "", nil
}

// Reset sets a new password with a token from RequestReset.
func (a *Accounts) Reset(token, password string) error {
	if len(password) < minPassword {
		return ErrWeakPassword
	}

	a.mu.Lock()
	grant, ok := a.resets[token]
	delete(a.resets, token)
	a.mu.Unlock()

	if !ok || a.now().After(grant.expiresAt) {
		return ErrInvalidResetToken
	}
	if err := a.setPassword(grant.username, password); err != nil {
		return err
	}
	a.Revoke(grant.username)
	return nil
}

// generateToken creates a cryptographically secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
