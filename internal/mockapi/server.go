// Package mockapi is a development backend for the attendance API. It serves
// the auth, employee, department and attendance endpoints from memory.
package mockapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/transport"
)

// Defaults of a fresh server.
const (
	DefaultBind          = "127.0.0.1"
	DefaultPort          = 8080
	DefaultTokenTTL      = time.Hour
	DefaultAdminPassword = "admin123"
	DefaultSeedPassword  = "password123"
)

// Config configures a Server.
type Config struct {
	Bind     string
	Port     int
	TokenTTL time.Duration
	// Secret signs access tokens. A random secret is generated when empty.
	Secret     []byte
	BcryptCost int
	// Now is the clock used for tokens and timestamps.
	Now func() time.Time
	// Seed loads the demo accounts and employees.
	Seed bool
}

// Server is the mock backend.
type Server struct {
	cfg       Config
	accounts  *Accounts
	directory *Directory
	router    *http.ServeMux
	server    *http.Server
}

// NewServer creates a mock backend.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Bind == "" {
		cfg.Bind = DefaultBind
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.Secret) == 0 {
		cfg.Secret = make([]byte, 32)
		if _, err := rand.Read(cfg.Secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}

	s := &Server{
		cfg:       cfg,
		accounts:  NewAccounts(cfg.Secret, cfg.TokenTTL, cfg.BcryptCost, cfg.Now),
		directory: NewDirectory(cfg.Now),
		router:    http.NewServeMux(),
	}

	if cfg.Seed {
		if err := s.seed(); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:      otelhttp.NewHandler(s.Handler(), "attendflow-mock"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// seed loads one account per demo employee. admin gets DefaultAdminPassword,
// everyone else DefaultSeedPassword.
func (s *Server) seed() error {
	for _, se := range seedEmployees {
		salary := se.salary
		req := domain.CreateEmployee{
			Username:     se.username,
			FullName:     se.fullName,
			Email:        se.email,
			PhoneNumber:  se.phone,
			DepartmentID: se.dept,
			Position:     se.position,
			BirthDate:    se.birthDate,
			JoinDate:     se.joinDate,
		}
		if salary > 0 {
			req.Salary = &salary
		}
		emp, err := s.directory.Create(req, "system")
		if err != nil {
			return err
		}
		if se.status != domain.EmployeeActive {
			if _, err := s.directory.Update(emp.ID, domain.UpdateEmployee{Status: se.status}, "system"); err != nil {
				return err
			}
		}

		role, password := domain.DefaultRole, DefaultSeedPassword
		if se.username == "admin" {
			role, password = "ADMIN", DefaultAdminPassword
		}
		id, _ := strconv.ParseInt(emp.ID, 10, 64)
		if _, err := s.accounts.Create(Account{
			EmployeeID:   id,
			Username:     se.username,
			Email:        se.email,
			FullName:     se.fullName,
			PhoneNumber:  se.phone,
			DepartmentID: se.dept,
			Role:         role,
		}, password); err != nil {
			return err
		}
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)

	// Auth
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)
	s.router.HandleFunc("POST /api/v1/auth/forgot-password", s.handleForgotPassword)
	s.router.HandleFunc("POST /api/v1/auth/reset-password", s.handleResetPassword)
	s.router.HandleFunc("POST /api/v1/auth/logout", s.requireAuth(s.handleLogout))

	// User
	s.router.HandleFunc("GET /api/v1/user/profile", s.requireAuth(s.handleGetProfile))
	s.router.HandleFunc("PUT /api/v1/user/profile", s.requireAuth(s.handleUpdateProfile))
	s.router.HandleFunc("POST /api/v1/user/change-password", s.requireAuth(s.handleChangePassword))

	// Employees
	s.router.HandleFunc("GET /api/v1/employees", s.requireAuth(s.handleListEmployees))
	s.router.HandleFunc("POST /api/v1/employees", s.requireAuth(s.handleCreateEmployee))
	s.router.HandleFunc("GET /api/v1/employees/filter", s.requireAuth(s.handleFilterEmployees))
	s.router.HandleFunc("GET /api/v1/employees/stats", s.requireAuth(s.handleEmployeeStats))
	s.router.HandleFunc("GET /api/v1/employees/{id}", s.requireAuth(s.handleGetEmployee))
	s.router.HandleFunc("PUT /api/v1/employees/{id}", s.requireAuth(s.handleUpdateEmployee))
	s.router.HandleFunc("DELETE /api/v1/employees/{id}", s.requireAuth(s.handleDeleteEmployee))
	s.router.HandleFunc("GET /api/v1/employees/{id}/activity", s.requireAuth(s.handleEmployeeActivity))
	s.router.HandleFunc("POST /api/v1/employees/{id}/avatar", s.requireAuth(s.handleUploadAvatar))
	s.router.HandleFunc("GET /api/v1/departments", s.requireAuth(s.handleListDepartments))

	// Attendance
	s.router.HandleFunc("GET /api/v1/attendance/report", s.requireAuth(s.handleAttendanceReport))
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return correlationIDMiddleware(loggingMiddleware(recoveryMiddleware(s.router)))
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting attendflow mock backend",
		"addr", s.server.Addr,
		"token_ttl", s.cfg.TokenTTL,
		"seeded", s.cfg.Seed,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down mock backend...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.cfg.Now().UTC().Format(time.RFC3339),
	})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// jsonSuccess writes the {success, message, data} envelope.
func jsonSuccess(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	jsonResponse(w, status, body)
}

func jsonError(w http.ResponseWriter, status int, message string, errs []transport.FieldError) {
	body := map[string]any{
		"success": false,
		"message": message,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	jsonResponse(w, status, body)
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body", nil)
		return false
	}
	return true
}
