// Package employee implements the employee and department endpoints.
package employee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/attendflow/attendflow/internal/cache"
	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/normalize"
	"github.com/attendflow/attendflow/internal/transport"
)

// Endpoint paths.
const (
	PathEmployees   = "/api/v1/employees"
	PathFilter      = "/api/v1/employees/filter"
	PathStats       = "/api/v1/employees/stats"
	PathDepartments = "/api/v1/departments"
)

func employeePath(id string) string {
	return PathEmployees + "/" + url.PathEscape(id)
}

const defaultPageSize = 10

var tracer = otel.Tracer("github.com/attendflow/attendflow/internal/employee")

// FallbackDepartments is served when the department listing is unavailable.
var FallbackDepartments = []domain.Department{
	{ID: "IT", Name: "Phòng công nghệ thông tin"},
	{ID: "MARKETING", Name: "Phòng quảng bá"},
	{ID: "HR", Name: "Human Resources"},
	{ID: "ACCOUNTING", Name: "Phòng kế toán"},
	{ID: "PRODUCTION", Name: "Phòng sản xuất"},
	{ID: "LEGAL", Name: "Pháp chế, hợp đồng"},
	{ID: "QA", Name: "Đảm bảo chất lượng"},
	{ID: "PROJECT_MANAGEMENT", Name: "Quản lý dự án"},
	{ID: "CORPORATE_COMMUNICATION", Name: "Truyền thông"},
	{ID: "TEST_DEPARTMENT", Name: "Phòng ban test"},
}

// Service talks to the employee endpoints and keeps the dashboard snapshot
// in the cache.
type Service struct {
	client     *transport.Client
	cache      *cache.Cache
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the time source for defaulted timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.normalizer.Now = now }
}

// NewService creates an employee service. c may be nil to disable caching.
func NewService(client *transport.Client, c *cache.Cache, opts ...Option) *Service {
	s := &Service{
		client:     client,
		cache:      c,
		normalizer: &normalize.Normalizer{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every employee.
func (s *Service) List(ctx context.Context) ([]domain.Employee, error) {
	resp, err := s.client.Get(ctx, PathEmployees, nil)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	list, err := s.normalizer.EmployeeList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return list.Employees, nil
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id string) (*domain.Employee, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	resp, err := s.client.Get(ctx, employeePath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get employee %s: %w", id, err)
	}
	return s.employee(resp)
}

// Create adds an employee.
func (s *Service) Create(ctx context.Context, req domain.CreateEmployee) (*domain.Employee, error) {
	resp, err := s.client.Post(ctx, PathEmployees, req, nil)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	e, err := s.employee(resp)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("employee created", "id", e.ID)
	return e, nil
}

// Update edits an employee.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateEmployee) (*domain.Employee, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	req.ID = id
	resp, err := s.client.Put(ctx, employeePath(id), req, nil)
	if err != nil {
		return nil, fmt.Errorf("update employee %s: %w", id, err)
	}
	e, err := s.employee(resp)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("employee updated", "id", id)
	return e, nil
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingID
	}
	if _, err := s.client.Delete(ctx, employeePath(id), nil); err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	s.invalidate(ctx)
	s.logger.Info("employee deleted", "id", id)
	return nil
}

func (s *Service) employee(resp *transport.Response) (*domain.Employee, error) {
	e, err := s.normalizer.Employee(resp.Body)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateEmployeeCache(ctx)
	}
}

// SearchQuery builds the filter query string. Legacy spellings are used
// only when the current field is empty.
func SearchQuery(f domain.EmployeeFilter) url.Values {
	q := url.Values{}
	add := func(key, value string) {
		if value != "" {
			q.Add(key, value)
		}
	}

	add("id", f.ID)
	add("username", f.Username)
	add("fullName", f.FullName)
	add("email", f.Email)
	add("phoneNumber", f.PhoneNumber)
	add("position", f.Position)
	if f.FullName == "" {
		add("fullName", f.Name)
	}
	add("departmentId", orDefault(f.DepartmentID, f.Department))
	add("status", string(f.Status))
	add("joinDateFrom", f.JoinDateFrom)
	add("joinDateTo", f.JoinDateTo)
	if f.SalaryMin != 0 {
		q.Add("salaryMin", strconv.FormatFloat(f.SalaryMin, 'f', -1, 64))
	}
	if f.SalaryMax != 0 {
		q.Add("salaryMax", strconv.FormatFloat(f.SalaryMax, 'f', -1, 64))
	}
	if f.Page > 0 {
		q.Add("page", strconv.Itoa(f.Page))
	}
	switch {
	case f.Size > 0:
		q.Add("size", strconv.Itoa(f.Size))
	case f.Limit > 0:
		q.Add("size", strconv.Itoa(f.Limit))
	}
	add("sortBy", f.SortBy)
	add("direction", orDefault(f.Direction, f.SortOrder))
	return q
}

// Search filters employees. Unpaginated results are wrapped in a single page.
func (s *Service) Search(ctx context.Context, f domain.EmployeeFilter) (*domain.EmployeePage, error) {
	path := PathFilter
	if q := SearchQuery(f).Encode(); q != "" {
		path += "?" + q
	}
	resp, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	list, err := s.normalizer.EmployeeList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}

	page := &domain.EmployeePage{Employees: list.Employees}
	if list.Pagination != nil {
		page.Pagination = *list.Pagination
		return page, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = f.Size
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	page.Pagination = domain.Pagination{
		Page:       max(f.Page, 1),
		Limit:      limit,
		Total:      len(list.Employees),
		TotalPages: 1,
	}
	return page, nil
}

// Stats returns workforce statistics, or zeroed statistics when the
// endpoint fails.
func (s *Service) Stats(ctx context.Context) *domain.EmployeeStats {
	resp, err := s.client.Get(ctx, PathStats, nil)
	if err == nil {
		stats, nerr := normalize.Stats(resp.Body)
		if nerr == nil {
			return stats
		}
		err = nerr
	}
	s.logger.Warn("employee stats unavailable, using empty stats", "error", err)
	stats, _ := normalize.Stats(map[string]any{})
	return stats
}

// Departments returns the department listing, or FallbackDepartments when
// the endpoint fails.
func (s *Service) Departments(ctx context.Context) []domain.Department {
	resp, err := s.client.Get(ctx, PathDepartments, nil)
	if err == nil {
		depts, nerr := normalize.Departments(resp.Body)
		if nerr == nil {
			return depts
		}
		err = nerr
	}
	s.logger.Warn("departments unavailable, using built-in list", "error", err)
	out := make([]domain.Department, len(FallbackDepartments))
	copy(out, FallbackDepartments)
	return out
}

// Activity returns the activity log of an employee, or an empty log when
// the endpoint fails.
func (s *Service) Activity(ctx context.Context, id string) []domain.EmployeeActivity {
	resp, err := s.client.Get(ctx, employeePath(id)+"/activity", nil)
	if err == nil {
		acts, nerr := normalize.Activity(resp.Body)
		if nerr == nil {
			return acts
		}
		err = nerr
	}
	s.logger.Warn("employee activity unavailable", "id", id, "error", err)
	return []domain.EmployeeActivity{}
}

// UploadAvatar uploads an avatar image and returns its URL.
func (s *Service) UploadAvatar(ctx context.Context, id, filename string, r io.Reader) (string, error) {
	if id == "" {
		return "", domain.ErrMissingID
	}
	resp, err := s.client.Upload(ctx, employeePath(id)+"/avatar", "avatar", filename, r, nil)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	var body struct {
		AvatarURL string `json:"avatarUrl"`
		Data      struct {
			AvatarURL string `json:"avatarUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", fmt.Errorf("decode avatar response: %w", err)
	}
	avatar := orDefault(body.Data.AvatarURL, body.AvatarURL)
	if avatar == "" {
		return "", fmt.Errorf("%w: avatar response has no avatarUrl", normalize.ErrUnrecognizedFormat)
	}
	s.invalidate(ctx)
	return avatar, nil
}

// Dashboard returns the cached employee snapshot, or loads employees,
// departments and stats concurrently and caches the result.
func (s *Service) Dashboard(ctx context.Context, force bool) (*cache.EmployeeSnapshot, error) {
	if !force && s.cache != nil {
		if snap, ok := s.cache.EmployeeData(ctx); ok {
			s.logger.Debug("dashboard served from cache", "employees", len(snap.Employees))
			return &snap, nil
		}
	}

	ctx, span := tracer.Start(ctx, "employee.Dashboard")
	defer span.End()

	var (
		employees   []domain.Employee
		departments []domain.Department
		stats       *domain.EmployeeStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.List(gctx)
		return err
	})
	g.Go(func() error {
		departments = s.Departments(gctx)
		return nil
	})
	g.Go(func() error {
		stats = s.Stats(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	span.SetAttributes(attribute.Int("employees", len(employees)), attribute.Int("departments", len(departments)))

	snap := cache.EmployeeSnapshot{
		Employees:         employees,
		Departments:       departments,
		Stats:             *stats,
		FilteredEmployees: employees,
	}
	if s.cache != nil {
		if err := s.cache.SetEmployeeData(ctx, snap); err != nil {
			s.logger.Warn("cache dashboard", "error", err)
		}
		if cached, ok := s.cache.EmployeeData(ctx); ok {
			return &cached, nil
		}
	}
	return &snap, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
