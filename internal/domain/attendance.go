package domain

// ReportType is the kind of attendance report selected by a filter.
type ReportType string

const (
	ReportEmployeeWithDates  ReportType = "employee_with_dates"
	ReportEmployeeAllTime    ReportType = "employee_all_time"
	ReportAllEmployeesPeriod ReportType = "all_employees_period"
)

// AttendanceStatus is the status of a single attendance day.
type AttendanceStatus string

const (
	AttendancePresent     AttendanceStatus = "PRESENT"
	AttendanceAbsent      AttendanceStatus = "ABSENT"
	AttendanceLate        AttendanceStatus = "LATE"
	AttendanceEarlyLeave  AttendanceStatus = "EARLY_LEAVE"
	AttendanceOvertime    AttendanceStatus = "OVERTIME"
	AttendanceHoliday     AttendanceStatus = "HOLIDAY"
	AttendanceWeekend     AttendanceStatus = "WEEKEND"
	AttendanceSickLeave   AttendanceStatus = "SICK_LEAVE"
	AttendanceAnnualLeave AttendanceStatus = "ANNUAL_LEAVE"
)

// AttendanceFilter selects an attendance report. Dates are YYYY-MM-DD.
type AttendanceFilter struct {
	EmployeeID   int64              `json:"employeeId,omitempty"`
	StartDate    string             `json:"startDate,omitempty"`
	EndDate      string             `json:"endDate,omitempty"`
	DepartmentID int64              `json:"departmentId,omitempty"`
	Status       []AttendanceStatus `json:"status,omitempty"`
}

// AttendanceReport is the canonical report. Pointer fields are only present
// for some report types: AttendanceRate requires an employee and a date range,
// TotalEmployees and AverageWorkDate only appear in all-employee summaries.
type AttendanceReport struct {
	EmployeeID       *int64   `json:"employeeId,omitempty"`
	EmployeeName     string   `json:"employeeName"`
	DepartmentName   string   `json:"departmentName"`
	Position         string   `json:"position,omitempty"`
	TotalEmployees   *int     `json:"totalEmployees,omitempty"`
	TotalDays        *int     `json:"totalDays,omitempty"`
	TotalWorkDate    float64  `json:"totalWorkDate"`
	AverageWorkDate  *float64 `json:"averageWorkDate,omitempty"`
	TotalAttendance  *int     `json:"totalAttendance,omitempty"`
	TotalWorkHours   float64  `json:"totalWorkHours"`
	AverageWorkHours float64  `json:"averageWorkHours"`
	AttendanceRate   *float64 `json:"attendanceRate,omitempty"`

	ComeEarlyCount  int `json:"comeEarlyCount"`
	PresentInCount  int `json:"presentInCount"`
	LateCount       int `json:"lateCount"`
	PresentOutCount int `json:"presentOutCount"`
	EarlyLeaveCount int `json:"earlyLeaveCount"`
	AbsentCount     int `json:"absentCount"`
	LeaveCount      int `json:"leaveCount"`

	TotalNotOnTimeCount   int `json:"totalNotOnTimeCount"`
	TotalNotOnTimeMinutes int `json:"totalNotOnTimeMinutes"`
	OvertimeCount         int `json:"overtimeCount"`
	TotalOvertimeMinutes  int `json:"totalOvertimeMinutes"`
}

// DepartmentAttendance is the per-department part of a summary.
type DepartmentAttendance struct {
	DepartmentName  string  `json:"departmentName"`
	EmployeeCount   int     `json:"employeeCount"`
	AttendanceRate  float64 `json:"attendanceRate"`
	PunctualityRate float64 `json:"punctualityRate"`
	AvgWorkHours    float64 `json:"avgWorkHours"`
}

// MonthlyTrend is one month of attendance history.
type MonthlyTrend struct {
	Month            string  `json:"month"`
	AttendanceRate   float64 `json:"attendanceRate"`
	TotalWorkingDays int     `json:"totalWorkingDays"`
	TotalPresentDays int     `json:"totalPresentDays"`
}

// AttendanceSummary is computed client-side from an all-employee report.
type AttendanceSummary struct {
	TotalEmployees        int                    `json:"totalEmployees"`
	AverageAttendanceRate float64                `json:"averageAttendanceRate"`
	TotalPresentDays      int                    `json:"totalPresentDays"`
	TotalAbsentDays       int                    `json:"totalAbsentDays"`
	TotalLateDays         int                    `json:"totalLateDays"`
	TotalWorkHours        float64                `json:"totalWorkHours"`
	AverageWorkHours      float64                `json:"averageWorkHours"`
	DepartmentStats       []DepartmentAttendance `json:"departmentStats"`
	MonthlyTrends         []MonthlyTrend         `json:"monthlyTrends"`
}

// DateRange is an inclusive YYYY-MM-DD range.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}
