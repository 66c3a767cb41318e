package mockapi

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestAccounts(t *testing.T) (*Accounts, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	a := NewAccounts([]byte("test-secret"), time.Hour, bcrypt.MinCost, clock.Now)
	if _, err := a.Create(Account{Username: "lan", Email: "lan@example.com"}, "password123"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return a, clock
}

func TestAccounts_Create(t *testing.T) {
	a, _ := newTestAccounts(t)

	if _, err := a.Create(Account{Username: "LAN"}, "password123"); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrUsernameExists)
	}
	if _, err := a.Create(Account{Username: "minh"}, "123"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Create() weak error = %v, want %v", err, ErrWeakPassword)
	}

	acc, err := a.Get("lan")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if acc.Role != "USER" {
		t.Errorf("Role = %q; want USER", acc.Role)
	}
	if acc.PasswordHash == "password123" {
		t.Error("password stored in clear text")
	}
}

func TestAccounts_Login(t *testing.T) {
	a, _ := newTestAccounts(t)

	if _, _, err := a.Login("lan", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v", err)
	}
	if _, _, err := a.Login("nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown user error = %v", err)
	}

	acc, sess, err := a.Login("Lan", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if acc.LastLoginAt.IsZero() {
		t.Error("LastLoginAt not set")
	}
	if sess.ExpiresIn != time.Hour {
		t.Errorf("ExpiresIn = %v; want 1h", sess.ExpiresIn)
	}

	got, err := a.Verify(sess.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != "lan" {
		t.Errorf("Verify() = %q; want lan", got)
	}
}

func TestAccounts_VerifyExpired(t *testing.T) {
	a, clock := newTestAccounts(t)
	sess, err := a.Issue("lan")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if _, err := a.Verify(sess.Token); err == nil {
		t.Error("Verify() should reject an expired token")
	}
}

func TestAccounts_VerifyForeignSecret(t *testing.T) {
	a, _ := newTestAccounts(t)
	other := NewAccounts([]byte("other-secret"), time.Hour, bcrypt.MinCost, a.now)
	if _, err := other.Create(Account{Username: "lan"}, "password123"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sess, err := other.Issue("lan")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := a.Verify(sess.Token); err == nil {
		t.Error("Verify() should reject a token signed with another secret")
	}
}

func TestAccounts_Refresh(t *testing.T) {
	a, _ := newTestAccounts(t)
	sess, err := a.Issue("lan")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	next, err := a.Refresh(sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.RefreshToken == sess.RefreshToken {
		t.Error("Refresh() should rotate the refresh token")
	}
	if _, err := a.Refresh(sess.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("Refresh() reuse error = %v, want %v", err, ErrInvalidRefreshToken)
	}

	a.Revoke("lan")
	if _, err := a.Refresh(next.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("Refresh() after Revoke error = %v", err)
	}
}

func TestAccounts_ChangePassword(t *testing.T) {
	a, _ := newTestAccounts(t)

	if err := a.ChangePassword("lan", "wrong", "newpass1"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("ChangePassword() error = %v, want %v", err, ErrWrongPassword)
	}
	if err := a.ChangePassword("lan", "password123", "newpass1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, _, err := a.Login("lan", "newpass1"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
}

func TestAccounts_Reset(t *testing.T) {
	a, clock := newTestAccounts(t)

	token, err := a.RequestReset("nobody@example.com")
	if err != nil || token != "" {
		t.Errorf("RequestReset() unknown = %q, %v; want empty", token, err)
	}

	token, err = a.RequestReset("LAN@example.com")
	if err != nil || token == "" {
		t.Fatalf("RequestReset() = %q, %v", token, err)
	}
	if err := a.Reset(token, "resetpass"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if err := a.Reset(token, "resetpass"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("Reset() reuse error = %v", err)
	}
	if _, _, err := a.Login("lan", "resetpass"); err != nil {
		t.Errorf("Login() after reset error = %v", err)
	}

	token, _ = a.RequestReset("lan@example.com")
	clock.t = clock.t.Add(2 * time.Hour)
	if err := a.Reset(token, "another1"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("Reset() expired error = %v", err)
	}
}
