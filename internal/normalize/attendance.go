package normalize

import (
	"fmt"

	"github.com/attendflow/attendflow/internal/domain"
)

const defaultReportFailure = "failed to fetch attendance report"

var reportExpected = []string{"employeeName", "departmentName", "totalWorkDate"}

// AttendanceReport normalizes a report payload. A wrapped payload must
// report success and carry data; an array of reports yields the first.
func AttendanceReport(raw any) (*domain.AttendanceReport, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(v)
	if !ok {
		return nil, formatError("attendance", "not an object", reportExpected, v)
	}

	if o.has("success") || o.has("message") || o.has("data") {
		if !o.truthy("success") || !o.truthy("data") {
			return nil, fmt.Errorf("%w: %s", domain.ErrRequestRejected, orDefault(o.str("message"), defaultReportFailure))
		}
		data := o["data"]
		if arr, ok := data.([]any); ok {
			if len(arr) == 0 {
				return nil, formatError("attendance", "empty report list", reportExpected, v)
			}
			data = arr[0]
		}
		if o, ok = asObject(data); !ok {
			return nil, formatError("attendance", "report is not an object", reportExpected, v)
		}
	}

	if o.str("employeeName") == "" {
		return nil, formatError("attendance", "missing employeeName", reportExpected, map[string]any(o))
	}

	return &domain.AttendanceReport{
		EmployeeID:       o.int64Ptr("employeeId"),
		EmployeeName:     o.str("employeeName"),
		DepartmentName:   o.str("departmentName"),
		Position:         o.str("position"),
		TotalEmployees:   o.intPtr("totalEmployees"),
		TotalDays:        o.intPtr("totalDays"),
		TotalWorkDate:    o.float("totalWorkDate"),
		AverageWorkDate:  o.floatPtr("averageWorkDate"),
		TotalAttendance:  o.intPtr("totalAttendance"),
		TotalWorkHours:   o.float("totalWorkHours"),
		AverageWorkHours: o.float("averageWorkHours"),
		AttendanceRate:   o.floatPtr("attendanceRate"),

		ComeEarlyCount:  o.integer("comeEarlyCount"),
		PresentInCount:  o.integer("presentInCount"),
		LateCount:       o.integer("lateCount"),
		PresentOutCount: o.integer("presentOutCount"),
		EarlyLeaveCount: o.integer("earlyLeaveCount"),
		AbsentCount:     o.integer("absentCount"),
		LeaveCount:      o.integer("leaveCount"),

		TotalNotOnTimeCount:   o.integer("totalNotOnTimeCount"),
		TotalNotOnTimeMinutes: o.integer("totalNotOnTimeMinutes"),
		OvertimeCount:         o.integer("overtimeCount"),
		TotalOvertimeMinutes:  o.integer("totalOvertimeMinutes"),
	}, nil
}
