package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/attendflow/attendflow/internal/app"
	"github.com/attendflow/attendflow/internal/config"
	"github.com/attendflow/attendflow/internal/i18n"
)

// Version is set at build time via ldflags
var Version = "dev"

const logFileName = "attendflow.log"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit()
	case "config":
		err = cmdConfig()
	case "login":
		err = withApp(ctx, func(a *app.App) error { return cmdLogin(ctx, a, os.Args[2:]) })
	case "register":
		err = withApp(ctx, func(a *app.App) error { return cmdRegister(ctx, a, os.Args[2:]) })
	case "logout":
		err = withApp(ctx, func(a *app.App) error { return cmdLogout(ctx, a) })
	case "whoami":
		err = withApp(ctx, func(a *app.App) error { return cmdWhoami(ctx, a) })
	case "refresh":
		err = withApp(ctx, func(a *app.App) error { return cmdRefresh(ctx, a) })
	case "profile":
		err = withApp(ctx, func(a *app.App) error { return cmdProfile(ctx, a, os.Args[2:]) })
	case "password":
		err = withApp(ctx, func(a *app.App) error { return cmdPassword(ctx, a, os.Args[2:]) })
	case "employees", "employee":
		err = withApp(ctx, func(a *app.App) error { return cmdEmployees(ctx, a, os.Args[2:]) })
	case "attendance":
		err = withApp(ctx, func(a *app.App) error { return cmdAttendance(ctx, a, os.Args[2:]) })
	case "cache":
		err = withApp(ctx, func(a *app.App) error { return cmdCache(ctx, a, os.Args[2:]) })
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("attendflow %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", displayError(err))
		os.Exit(1)
	}
}

// translator is set once the config is loaded; errors before that are
// shown in the default language.
var translator = i18n.MustNew(i18n.DefaultLanguage)

func displayError(err error) string {
	return translator.Error(err)
}

// withApp loads the configuration, wires the client and runs fn.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	dir, err := config.EnsureDir()
	if err != nil {
		return fmt.Errorf("setup config directory: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(dir, cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	a, err := app.NewApp(ctx, cfg, app.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer a.Close()
	translator = a.Translator

	return fn(a)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging sends the library logs to ~/.attendflow/logs so they do not
// mix with command output.
func setupLogging(dir string, cfg config.LogConfig) (*os.File, error) {
	logPath := filepath.Join(dir, "logs", logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler = slog.NewTextHandler(logFile, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(logFile, opts)
	}
	slog.SetDefault(slog.New(handler))
	return logFile, nil
}

func printUsage() {
	fmt.Println(`AttendFlow - employee and attendance client

Usage:
  attendflow <command> [arguments]

Setup Commands:
  init                      Write the default configuration
  config                    Show current configuration

Account Commands:
  login <username>          Sign in (password from ATTENDFLOW_PASSWORD or stdin)
  register                  Create an account
  logout                    Sign out
  whoami                    Show the signed-in user
  refresh                   Refresh the access token now
  profile update            Edit your profile
  password change           Change your password
  password forgot <email>   Request a reset link
  password reset <token>    Set a new password with a reset token

Employee Commands:
  employees list            List all employees
  employees search          Filter employees (-department, -status, -name, -page, -size, ...)
  employees get <id>        Show one employee
  employees create          Add an employee
  employees update <id>     Edit an employee
  employees delete <id>     Remove an employee
  employees stats           Workforce statistics
  employees departments     List departments
  employees activity <id>   Show the activity log of an employee
  employees avatar <id> <file>  Upload an avatar image
  employees dashboard       Load employees, departments and stats (cached)
  employees view [grid|table]   Show or set the list layout

Attendance Commands:
  attendance report         Attendance report (-employee, -from, -to, -range)
  attendance summary        Period summary for all employees

Cache Commands:
  cache status              Show cache entries
  cache clear               Drop every cache entry

Other:
  help                      Show this help message
  version                   Show version information

Examples:
  attendflow login admin
  attendflow employees search -department IT -status ACTIVE
  attendflow attendance report -employee 3 -range month`)
}
