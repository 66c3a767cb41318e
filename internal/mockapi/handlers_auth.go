package mockapi

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/transport"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password are required", requiredFields(map[string]string{
			"username": creds.Username,
			"password": creds.Password,
		}))
		return
	}

	acc, sess, err := s.accounts.Login(creds.Username, creds.Password)
	if err != nil {
		slog.Info("login rejected", "correlation_id", GetCorrelationID(r.Context()), "username", creds.Username)
		jsonError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}
	jsonResponse(w, http.StatusOK, s.authBody(acc, sess, "Login successful"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := requiredFields(map[string]string{
		"username": req.Username,
		"password": req.Password,
		"fullName": req.FullName,
		"email":    req.Email,
	}); len(errs) > 0 {
		jsonError(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}
	if len(req.Password) < minPassword {
		jsonError(w, http.StatusBadRequest, "Validation failed", []transport.FieldError{
			{Field: "password", Code: "TOO_SHORT", Message: ErrWeakPassword.Error()},
		})
		return
	}
	if _, err := s.accounts.Get(req.Username); err == nil {
		jsonError(w, http.StatusConflict, ErrUsernameExists.Error(), nil)
		return
	}

	emp, err := s.directory.Create(domain.CreateEmployee{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: req.DepartmentName,
	}, req.Username)
	if err != nil {
		jsonError(w, http.StatusConflict, err.Error(), nil)
		return
	}

	id, _ := strconv.ParseInt(emp.ID, 10, 64)
	acc, err := s.accounts.Create(Account{
		EmployeeID:   id,
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: emp.Department.ID,
	}, req.Password)
	if err != nil {
		s.directory.Delete(emp.ID)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUsernameExists) {
			status = http.StatusConflict
		}
		jsonError(w, status, err.Error(), nil)
		return
	}

	sess, err := s.accounts.Issue(acc.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	jsonResponse(w, http.StatusCreated, s.authBody(acc, sess, "Registration successful"))
}

// authBody renders the flat login payload.
func (s *Server) authBody(acc *Account, sess *Session, message string) map[string]any {
	dept := s.accountDepartment(acc)
	return map[string]any{
		"id":                    strconv.FormatInt(acc.ID, 10),
		"employeeId":            strconv.FormatInt(acc.EmployeeID, 10),
		"username":              acc.Username,
		"email":                 acc.Email,
		"fullName":              acc.FullName,
		"role":                  acc.Role,
		"departmentName":        dept.ID,
		"departmentDisplayName": dept.Name,
		"token":                 sess.Token,
		"refreshToken":          sess.RefreshToken,
		"message":               message,
	}
}

func (s *Server) accountDepartment(acc *Account) domain.DepartmentRef {
	if emp, err := s.directory.Get(strconv.FormatInt(acc.EmployeeID, 10)); err == nil {
		return emp.Department
	}
	s.directory.mu.RLock()
	defer s.directory.mu.RUnlock()
	return s.directory.departmentRef(acc.DepartmentID)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.accounts.Refresh(req.RefreshToken)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "", map[string]any{
		"token":        sess.Token,
		"refreshToken": sess.RefreshToken,
		"expiresIn":    int64(sess.ExpiresIn / time.Second),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.accounts.Revoke(Username(r.Context()))
	jsonSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email is required", nil)
		return
	}
	token, err := s.accounts.RequestReset(req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to send reset email", nil)
		return
	}
	if token != "" {
		// No mail is sent; the token is only available in the log.
		slog.Info("password reset requested",
			"correlation_id", GetCorrelationID(r.Context()),
			"email", req.Email,
			"reset_token", token,
		)
	}
	jsonSuccess(w, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordReset
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		jsonError(w, http.StatusBadRequest, domain.ErrPasswordMismatch.Error(), nil)
		return
	}
	switch err := s.accounts.Reset(req.Token, req.NewPassword); {
	case errors.Is(err, ErrWeakPassword):
		jsonError(w, http.StatusBadRequest, "Validation failed", []transport.FieldError{
			{Field: "newPassword", Code: "TOO_SHORT", Message: err.Error()},
		})
	case errors.Is(err, ErrInvalidResetToken):
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to reset password", nil)
	default:
		jsonSuccess(w, http.StatusOK, "Password has been reset", nil)
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordChange
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		jsonError(w, http.StatusBadRequest, domain.ErrPasswordMismatch.Error(), nil)
		return
	}
	switch err := s.accounts.ChangePassword(Username(r.Context()), req.CurrentPassword, req.NewPassword); {
	case errors.Is(err, ErrWeakPassword):
		jsonError(w, http.StatusBadRequest, "Validation failed", []transport.FieldError{
			{Field: "newPassword", Code: "TOO_SHORT", Message: err.Error()},
		})
	case errors.Is(err, ErrWrongPassword):
		jsonError(w, http.StatusBadRequest, err.Error(), []transport.FieldError{
			{Field: "currentPassword", Code: "INVALID", Message: err.Error()},
		})
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to change password", nil)
	default:
		jsonSuccess(w, http.StatusOK, "Password changed successfully", nil)
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accounts.Get(Username(r.Context()))
	if err != nil {
		jsonError(w, http.StatusNotFound, "user not found", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "", s.profile(acc))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		jsonError(w, http.StatusBadRequest, "Validation failed", []transport.FieldError{
			{Field: "email", Code: "INVALID_FORMAT", Message: "email is not valid"},
		})
		return
	}

	username := Username(r.Context())
	acc, err := s.accounts.Update(username, func(a *Account) {
		if req.FullName != "" {
			a.FullName = req.FullName
		}
		if req.Email != "" {
			a.Email = req.Email
		}
		if req.PhoneNumber != "" {
			a.PhoneNumber = req.PhoneNumber
		}
		if req.Avatar != "" {
			a.Avatar = req.Avatar
		}
	})
	if err != nil {
		jsonError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	empID := strconv.FormatInt(acc.EmployeeID, 10)
	if _, err := s.directory.Update(empID, domain.UpdateEmployee{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}, username); err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		jsonError(w, http.StatusInternalServerError, "failed to update profile", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "Profile updated successfully", s.profile(acc))
}

func (s *Server) profile(acc *Account) map[string]any {
	p := map[string]any{
		"id":          strconv.FormatInt(acc.ID, 10),
		"employeeId":  strconv.FormatInt(acc.EmployeeID, 10),
		"username":    acc.Username,
		"email":       acc.Email,
		"fullName":    acc.FullName,
		"phoneNumber": acc.PhoneNumber,
		"avatar":      acc.Avatar,
		"department":  s.accountDepartment(acc),
		"role":        acc.Role,
		"status":      string(domain.UserActive),
		"createdAt":   acc.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   acc.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !acc.LastLoginAt.IsZero() {
		p["lastLoginAt"] = acc.LastLoginAt.UTC().Format(time.RFC3339)
	}
	if emp, err := s.directory.Get(strconv.FormatInt(acc.EmployeeID, 10)); err == nil {
		p["position"] = emp.Position
		if emp.Avatar != "" && acc.Avatar == "" {
			p["avatar"] = emp.Avatar
		}
	}
	return p
}

// requiredFields reports the empty entries of fields in key order.
func requiredFields(fields map[string]string) []transport.FieldError {
	var errs []transport.FieldError
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.TrimSpace(fields[name]) == "" {
			errs = append(errs, transport.FieldError{Field: name, Code: "REQUIRED", Message: name + " is required"})
		}
	}
	return errs
}
