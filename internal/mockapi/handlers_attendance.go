package mockapi

import (
	"hash/fnv"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/attendflow/attendflow/internal/attendance"
	"github.com/attendflow/attendflow/internal/domain"
	"github.com/attendflow/attendflow/internal/transport"
)

// maxReportDays bounds the history synthesized for one employee.
const maxReportDays = 366

const (
	hoursOnTime = 8.0
	hoursLate   = 7.5
	lateMinutes = 15
)

func (s *Server) handleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	f, errs := parseAttendanceFilter(r.URL.Query())
	if len(errs) > 0 {
		jsonError(w, http.StatusBadRequest, "Invalid filter", errs)
		return
	}
	reportType, err := attendance.Classify(f)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var report map[string]any
	if reportType == domain.ReportAllEmployeesPeriod {
		report = s.periodReport(f)
	} else {
		report, err = s.employeeReport(f, reportType)
		if err != nil {
			jsonError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
	}
	jsonSuccess(w, http.StatusOK, "Attendance report generated", report)
}

func parseAttendanceFilter(q url.Values) (domain.AttendanceFilter, []transport.FieldError) {
	var errs []transport.FieldError
	id := func(key string) int64 {
		v := q.Get(key)
		if v == "" {
			return 0
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, transport.FieldError{Field: key, Code: "INVALID_NUMBER", Message: key + " must be a positive integer"})
			return 0
		}
		return n
	}
	date := func(key string) string {
		v := q.Get(key)
		if v == "" {
			return ""
		}
		if _, err := time.Parse(attendance.DateLayout, v); err != nil {
			errs = append(errs, transport.FieldError{Field: key, Code: "INVALID_DATE", Message: key + " must be YYYY-MM-DD"})
		}
		return v
	}

	f := domain.AttendanceFilter{
		EmployeeID:   id("employeeId"),
		StartDate:    date("startDate"),
		EndDate:      date("endDate"),
		DepartmentID: id("departmentId"),
	}
	for _, st := range q["status"] {
		f.Status = append(f.Status, domain.AttendanceStatus(strings.ToUpper(st)))
	}
	if len(errs) == 0 && f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		errs = append(errs, transport.FieldError{Field: "startDate", Code: "INVALID_RANGE", Message: "startDate must not be after endDate"})
	}
	return f, errs
}

// tally is the synthesized attendance of one employee over a range.
type tally struct {
	days      int
	workDays  int
	onTime    int
	early     int
	late      int
	absent    int
	workHours float64
}

func (t *tally) add(o tally) {
	t.days = max(t.days, o.days)
	t.workDays += o.workDays
	t.onTime += o.onTime
	t.early += o.early
	t.late += o.late
	t.absent += o.absent
	t.workHours += o.workHours
}

func (t tally) attended() int {
	return t.onTime + t.early + t.late
}

// synthesize derives a stable attendance history for an employee: every
// weekday in [from, to] gets an outcome hashed from the employee and date.
func synthesize(employeeID string, from, to time.Time, statuses []domain.AttendanceStatus) tally {
	want := func(st domain.AttendanceStatus) bool {
		return len(statuses) == 0 || slices.Contains(statuses, st)
	}

	var t tally
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		t.days++
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		t.workDays++

		h := fnv.New32a()
		h.Write([]byte(employeeID + "|" + d.Format(attendance.DateLayout)))
		switch v := h.Sum32() % 20; {
		case v == 0:
			if want(domain.AttendanceAbsent) {
				t.absent++
			}
		case v <= 3:
			if want(domain.AttendanceLate) {
				t.late++
				t.workHours += hoursLate
			}
		case v <= 8:
			if want(domain.AttendancePresent) {
				t.early++
				t.workHours += hoursOnTime
			}
		default:
			if want(domain.AttendancePresent) {
				t.onTime++
				t.workHours += hoursOnTime
			}
		}
	}
	return t
}

func (s *Server) employeeReport(f domain.AttendanceFilter, reportType domain.ReportType) (map[string]any, error) {
	id := strconv.FormatInt(f.EmployeeID, 10)
	emp, err := s.directory.Get(id)
	if err != nil {
		return nil, err
	}

	var from, to time.Time
	if reportType == domain.ReportEmployeeWithDates {
		from, _ = time.Parse(attendance.DateLayout, f.StartDate)
		to, _ = time.Parse(attendance.DateLayout, f.EndDate)
	} else {
		to = truncateDay(s.cfg.Now())
		from = to.AddDate(0, 0, -(maxReportDays - 1))
		if joined, err := time.Parse(attendance.DateLayout, emp.JoinDate); err == nil && joined.After(from) {
			from = joined
		}
	}
	if to.Sub(from) > maxReportDays*24*time.Hour {
		from = to.AddDate(0, 0, -(maxReportDays - 1))
	}

	t := synthesize(id, from, to, f.Status)
	report := reportBody(t)
	report["employeeId"] = f.EmployeeID
	report["employeeName"] = emp.FullName
	report["departmentName"] = emp.Department.Name
	report["position"] = emp.Position
	if reportType == domain.ReportEmployeeWithDates {
		report["attendanceRate"] = rate(t)
	}
	return report, nil
}

func (s *Server) periodReport(f domain.AttendanceFilter) map[string]any {
	from, _ := time.Parse(attendance.DateLayout, f.StartDate)
	to, _ := time.Parse(attendance.DateLayout, f.EndDate)
	if to.Sub(from) > maxReportDays*24*time.Hour {
		from = to.AddDate(0, 0, -(maxReportDays - 1))
	}

	deptName := "All Departments"
	var deptID string
	if f.DepartmentID > 0 {
		// Numeric department ids address the department table by position.
		depts := s.directory.Departments()
		if idx := int(f.DepartmentID) - 1; idx < len(depts) {
			deptID, deptName = depts[idx].ID, depts[idx].Name
		} else {
			deptID = strconv.FormatInt(f.DepartmentID, 10)
		}
	}

	var total tally
	employees := 0
	for _, e := range s.directory.All() {
		if deptID != "" && e.Department.ID != deptID {
			continue
		}
		employees++
		total.add(synthesize(e.ID, from, to, f.Status))
	}

	report := reportBody(total)
	report["employeeName"] = "All Employees"
	report["departmentName"] = deptName
	report["totalEmployees"] = employees
	report["attendanceRate"] = rate(total)
	if employees > 0 {
		report["averageWorkDate"] = float64(total.attended()) / float64(employees)
	}
	return report
}

func reportBody(t tally) map[string]any {
	avg := 0.0
	if n := t.attended(); n > 0 {
		avg = t.workHours / float64(n)
	}
	return map[string]any{
		"totalDays":             t.days,
		"totalWorkDate":         t.workDays,
		"totalAttendance":       t.attended(),
		"presentInCount":        t.onTime,
		"comeEarlyCount":        t.early,
		"lateCount":             t.late,
		"presentOutCount":       t.attended(),
		"earlyLeaveCount":       0,
		"absentCount":           t.absent,
		"leaveCount":            0,
		"totalNotOnTimeCount":   t.late,
		"totalNotOnTimeMinutes": t.late * lateMinutes,
		"overtimeCount":         0,
		"totalOvertimeMinutes":  0,
		"totalWorkHours":        t.workHours,
		"averageWorkHours":      avg,
	}
}

func rate(t tally) float64 {
	if t.workDays == 0 {
		return 0
	}
	return float64(t.attended()) / float64(t.workDays) * 100
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
