package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/attendflow/attendflow/internal/app"
	"github.com/attendflow/attendflow/internal/domain"
)

const passwordEnv = "ATTENDFLOW_PASSWORD"

var stdin = bufio.NewReader(os.Stdin)

// prompt reads one line from stdin, returning fallback when it is set.
func prompt(label, fallback string) (string, error) {
	if fallback != "" {
		return fallback, nil
	}
	fmt.Printf("%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func cmdLogin(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow login <username>")
	}
	password, err := prompt("Password", os.Getenv(passwordEnv))
	if err != nil {
		return err
	}

	if err := a.Session.Login(ctx, domain.Credentials{Username: args[0], Password: password}); err != nil {
		return err
	}
	u := a.Session.User()
	fmt.Printf("✓ Signed in as %s (%s)\n", u.FullName, u.Role)
	return nil
}

func cmdRegister(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req domain.Registration
	fs.StringVar(&req.Username, "username", "", "login name")
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.DepartmentName, "department", "", "department id, e.g. IT")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Username == "" || req.Email == "" {
		return errors.New("usage: attendflow register -username <name> -email <email> [-name] [-phone] [-department]")
	}

	password, err := prompt("Password", os.Getenv(passwordEnv))
	if err != nil {
		return err
	}
	req.Password = password

	if err := a.Session.Register(ctx, req); err != nil {
		return err
	}
	fmt.Printf("✓ Registered and signed in as %s\n", a.Session.User().Username)
	return nil
}

func cmdLogout(ctx context.Context, a *app.App) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("✓ Signed out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app.App) error {
	if !a.Session.IsAuthenticated() {
		fmt.Println("Not signed in")
		return nil
	}
	u, err := a.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printUser(u)
	return nil
}

func cmdRefresh(ctx context.Context, a *app.App) error {
	if err := a.Session.Refresh(ctx); err != nil {
		return err
	}
	fmt.Println("✓ Token refreshed")
	return nil
}

func cmdProfile(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 || args[0] != "update" {
		return cmdWhoami(ctx, a)
	}

	fs := flag.NewFlagSet("profile update", flag.ContinueOnError)
	var req domain.ProfileUpdate
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Avatar, "avatar", "", "avatar url")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if req == (domain.ProfileUpdate{}) {
		return errors.New("nothing to update: pass -name, -email, -phone or -avatar")
	}

	u, err := a.Auth.UpdateProfile(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println("✓ Profile updated")
	printUser(u)
	return nil
}

func cmdPassword(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow password <change|forgot|reset>")
	}

	var (
		msg string
		err error
	)
	switch args[0] {
	case "change":
		var req domain.PasswordChange
		if req.CurrentPassword, err = prompt("Current password", ""); err != nil {
			return err
		}
		if req.NewPassword, err = prompt("New password", ""); err != nil {
			return err
		}
		if req.ConfirmPassword, err = prompt("Confirm new password", ""); err != nil {
			return err
		}
		msg, err = a.Auth.ChangePassword(ctx, req)
	case "forgot":
		if len(args) < 2 {
			return errors.New("usage: attendflow password forgot <email>")
		}
		msg, err = a.Auth.ForgotPassword(ctx, args[1])
	case "reset":
		if len(args) < 2 {
			return errors.New("usage: attendflow password reset <token>")
		}
		req := domain.PasswordReset{Token: args[1]}
		if req.NewPassword, err = prompt("New password", ""); err != nil {
			return err
		}
		if req.ConfirmPassword, err = prompt("Confirm new password", ""); err != nil {
			return err
		}
		msg, err = a.Auth.ResetPassword(ctx, req)
	default:
		return fmt.Errorf("unknown password command: %s", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", msg)
	return nil
}

func printUser(u *domain.User) {
	fmt.Printf("Username:    %s\n", u.Username)
	fmt.Printf("Name:        %s\n", u.FullName)
	fmt.Printf("Email:       %s\n", u.Email)
	if u.PhoneNumber != "" {
		fmt.Printf("Phone:       %s\n", u.PhoneNumber)
	}
	fmt.Printf("Department:  %s\n", u.Department.Name)
	fmt.Printf("Role:        %s\n", u.Role)
	fmt.Printf("Employee ID: %s\n", u.EmployeeID)
	if u.LastLoginAt != "" {
		fmt.Printf("Last login:  %s\n", u.LastLoginAt)
	}
}
