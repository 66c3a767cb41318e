package mockapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/transport"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 2 << 20

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	all := s.directory.All()
	jsonSuccess(w, http.StatusOK, "Employees retrieved successfully", domain.EmployeePage{
		Employees: all,
		Pagination: domain.Pagination{
			Page:       1,
			Limit:      max(len(all), 1),
			Total:      len(all),
			TotalPages: 1,
		},
	})
}

func (s *Server) handleFilterEmployees(w http.ResponseWriter, r *http.Request) {
	f, errs := parseFilter(r.URL.Query())
	if len(errs) > 0 {
		jsonError(w, http.StatusBadRequest, "Invalid filter", errs)
		return
	}
	jsonSuccess(w, http.StatusOK, "", s.directory.Search(f))
}

// parseFilter reads the filter query string.
func parseFilter(q url.Values) (domain.EmployeeFilter, []transport.FieldError) {
	var errs []transport.FieldError
	integer := func(key string) int {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, transport.FieldError{Field: key, Code: "INVALID_NUMBER", Message: key + " must be a positive integer"})
			return 0
		}
		return n
	}
	float := func(key string) float64 {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, transport.FieldError{Field: key, Code: "INVALID_NUMBER", Message: key + " must be a number"})
			return 0
		}
		return n
	}

	f := domain.EmployeeFilter{
		ID:           q.Get("id"),
		Username:     q.Get("username"),
		FullName:     q.Get("fullName"),
		Email:        q.Get("email"),
		PhoneNumber:  q.Get("phoneNumber"),
		Position:     q.Get("position"),
		DepartmentID: q.Get("departmentId"),
		Status:       domain.EmployeeStatus(strings.ToUpper(q.Get("status"))),
		JoinDateFrom: q.Get("joinDateFrom"),
		JoinDateTo:   q.Get("joinDateTo"),
		SalaryMin:    float("salaryMin"),
		SalaryMax:    float("salaryMax"),
		Page:         integer("page"),
		Size:         integer("size"),
		SortBy:       q.Get("sortBy"),
		Direction:    q.Get("direction"),
	}
	if f.SalaryMin > 0 && f.SalaryMax > 0 && f.SalaryMin > f.SalaryMax {
		errs = append(errs, transport.FieldError{Field: "salaryMin", Code: "INVALID_RANGE", Message: "salaryMin must not exceed salaryMax"})
	}
	return f, errs
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEmployee
	if !decodeJSON(w, r, &req) {
		return
	}
	errs := requiredFields(map[string]string{
		"fullName": req.FullName,
		"email":    req.Email,
	})
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		errs = append(errs, transport.FieldError{Field: "email", Code: "INVALID_FORMAT", Message: "email is not valid"})
	}
	if req.Salary != nil && *req.Salary < 0 {
		errs = append(errs, transport.FieldError{Field: "salary", Code: "NEGATIVE", Message: "salary must not be negative"})
	}
	if len(errs) > 0 {
		jsonError(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	e, err := s.directory.Create(req, Username(r.Context()))
	if errors.Is(err, ErrDuplicateEmail) {
		jsonError(w, http.StatusConflict, err.Error(), []transport.FieldError{
			{Field: "email", Code: "DUPLICATE", Message: err.Error()},
		})
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create employee", nil)
		return
	}
	jsonSuccess(w, http.StatusCreated, "Employee created successfully", e)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.directory.Get(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "", e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateEmployee
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		jsonError(w, http.StatusBadRequest, "Validation failed", []transport.FieldError{
			{Field: "email", Code: "INVALID_FORMAT", Message: "email is not valid"},
		})
		return
	}
	e, err := s.directory.Update(r.PathValue("id"), req, Username(r.Context()))
	if err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "Employee updated successfully", e)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Delete(r.PathValue("id")); err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "Employee deleted successfully", nil)
}

func (s *Server) handleEmployeeStats(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, "", s.directory.Stats())
}

func (s *Server) handleEmployeeActivity(w http.ResponseWriter, r *http.Request) {
	acts, err := s.directory.Activity(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	jsonSuccess(w, http.StatusOK, "", acts)
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, "", s.directory.Departments())
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.directory.Get(id); err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1024)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "avatar file is required", []transport.FieldError{
			{Field: "avatar", Code: "REQUIRED", Message: err.Error()},
		})
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		jsonError(w, http.StatusBadRequest, "avatar file is empty", nil)
		return
	}
	ext, ok := avatarTypes[http.DetectContentType(head[:n])]
	if !ok {
		jsonError(w, http.StatusBadRequest, "avatar must be a PNG, JPEG, GIF or WebP image", []transport.FieldError{
			{Field: "avatar", Code: "INVALID_TYPE", Message: "unsupported image type"},
		})
		return
	}

	avatarURL := fmt.Sprintf("/uploads/avatars/%s-%s%s", id, uuid.NewString(), ext)
	if err := s.directory.SetAvatar(id, avatarURL, Username(r.Context())); err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	slog.Info("avatar uploaded",
		"correlation_id", GetCorrelationID(r.Context()),
		"employee_id", id,
		"filename", filepath.Base(header.Filename),
		"size", header.Size,
	)
	jsonSuccess(w, http.StatusOK, "Avatar uploaded successfully", map[string]string{"avatarUrl": avatarURL})
}
