// Package attendance implements the attendance report endpoint and the
// summaries computed from it.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/normalize"
	"github.com/attendflow/attendflow/internal/transport"
)

// PathReport is the attendance report endpoint.
const PathReport = "/api/v1/attendance/report"

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

// Classify determines which report a filter selects. Filters that match no
// report are rejected before any request is made.
func Classify(f domain.AttendanceFilter) (domain.ReportType, error) {
	hasEmployee := f.EmployeeID != 0
	hasStart, hasEnd := f.StartDate != "", f.EndDate != ""

	switch {
	case hasEmployee && hasStart && hasEnd:
		return domain.ReportEmployeeWithDates, nil
	case hasEmployee && !hasStart && !hasEnd:
		return domain.ReportEmployeeAllTime, nil
	case !hasEmployee && hasStart && hasEnd:
		return domain.ReportAllEmployeesPeriod, nil
	}
	return "", domain.ErrInvalidReportFilter
}

// Query builds the report query string.
func Query(f domain.AttendanceFilter) url.Values {
	q := url.Values{}
	if f.EmployeeID != 0 {
		q.Set("employeeId", strconv.FormatInt(f.EmployeeID, 10))
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.DepartmentID != 0 {
		q.Set("departmentId", strconv.FormatInt(f.DepartmentID, 10))
	}
	for _, s := range f.Status {
		q.Add("status", string(s))
	}
	return q
}

// Service fetches attendance reports.
type Service struct {
	client *transport.Client
	logger *slog.Logger
}

// NewService creates an attendance service.
func NewService(client *transport.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// Report fetches the report selected by f.
func (s *Service) Report(ctx context.Context, f domain.AttendanceFilter) (*domain.AttendanceReport, error) {
	reportType, err := Classify(f)
	if err != nil {
		return nil, err
	}

	path := PathReport + "?" + Query(f).Encode()
	s.logger.Debug("fetching attendance report", "type", reportType, "path", path)

	resp, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	report, err := normalize.AttendanceReport(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	return report, nil
}

// EmployeeReport fetches the report of one employee, over a date range when
// both dates are given and over all time otherwise.
func (s *Service) EmployeeReport(ctx context.Context, employeeID int64, start, end string) (*domain.AttendanceReport, error) {
	return s.Report(ctx, domain.AttendanceFilter{EmployeeID: employeeID, StartDate: start, EndDate: end})
}

// AllEmployeesSummary fetches the aggregate report of every employee.
func (s *Service) AllEmployeesSummary(ctx context.Context, start, end string) (*domain.AttendanceReport, error) {
	return s.Report(ctx, domain.AttendanceFilter{StartDate: start, EndDate: end})
}

// MultipleEmployeesReport returns the report selected by f as a list.
func (s *Service) MultipleEmployeesReport(ctx context.Context, f domain.AttendanceFilter) ([]domain.AttendanceReport, error) {
	report, err := s.Report(ctx, f)
	if err != nil {
		return nil, err
	}
	return []domain.AttendanceReport{*report}, nil
}

// Summary computes period statistics from the all-employee report.
func (s *Service) Summary(ctx context.Context, start, end string) (*domain.AttendanceSummary, error) {
	report, err := s.AllEmployeesSummary(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return Summarize(report), nil
}

// Summarize derives an AttendanceSummary from an aggregate report.
func Summarize(r *domain.AttendanceReport) *domain.AttendanceSummary {
	employees := 1
	if r.TotalEmployees != nil && *r.TotalEmployees > 0 {
		employees = *r.TotalEmployees
	}
	var rate float64
	if r.AttendanceRate != nil {
		rate = *r.AttendanceRate
	}

	return &domain.AttendanceSummary{
		TotalEmployees:        employees,
		AverageAttendanceRate: rate,
		TotalPresentDays:      r.PresentInCount + r.ComeEarlyCount,
		TotalAbsentDays:       r.AbsentCount,
		TotalLateDays:         r.LateCount,
		TotalWorkHours:        r.TotalWorkHours,
		AverageWorkHours:      r.AverageWorkHours,
		DepartmentStats:       []domain.DepartmentAttendance{departmentStats(r, employees)},
		MonthlyTrends:         []domain.MonthlyTrend{},
	}
}

// departmentStats treats the aggregate as a single department.
func departmentStats(r *domain.AttendanceReport, employees int) domain.DepartmentAttendance {
	attended := float64(r.PresentInCount + r.ComeEarlyCount)
	expected := r.TotalWorkDate
	if expected == 0 {
		expected = 1
	}

	punctuality := 100.0
	if r.TotalNotOnTimeCount > 0 {
		punctuality = 0
		if attended > 0 {
			punctuality = (attended - float64(r.TotalNotOnTimeCount)) / attended * 100
		}
	}

	return domain.DepartmentAttendance{
		DepartmentName:  r.DepartmentName,
		EmployeeCount:   employees,
		AttendanceRate:  attended / expected * 100,
		PunctualityRate: punctuality,
		AvgWorkHours:    r.AverageWorkHours,
	}
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// CurrentMonthRange spans the first to the last day of the month of now.
func CurrentMonthRange(now time.Time) domain.DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return domain.DateRange{StartDate: first.Format(DateLayout), EndDate: last.Format(DateLayout)}
}

// Last30DaysRange spans the 30 days ending at now.
func Last30DaysRange(now time.Time) domain.DateRange {
	return domain.DateRange{StartDate: FormatDate(now.AddDate(0, 0, -30)), EndDate: FormatDate(now)}
}

// TodayRange spans the day of now.
func TodayRange(now time.Time) domain.DateRange {
	today := FormatDate(now)
	return domain.DateRange{StartDate: today, EndDate: today}
}
