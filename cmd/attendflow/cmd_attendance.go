package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/attendflow/attendflow/internal/app"
	"github.com/attendflow/attendflow/internal/attendance"
	"github.com/attendflow/attendflow/internal/domain"
)

func cmdAttendance(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow attendance <report|summary>")
	}
	switch args[0] {
	case "report":
		return attendanceReport(ctx, a, args[1:])
	case "summary":
		return attendanceSummary(ctx, a, args[1:])
	default:
		return fmt.Errorf("unknown attendance command: %s", args[0])
	}
}

// periodFlags binds -from, -to and -range.
type periodFlags struct {
	from, to, period string
}

func (pf *periodFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&pf.from, "from", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&pf.to, "to", "", "end date (YYYY-MM-DD)")
	fs.StringVar(&pf.period, "range", "", "month, 30d or today")
}

// dates resolves the period. An explicit -range wins over -from and -to.
func (pf *periodFlags) dates(now time.Time) (domain.DateRange, error) {
	switch pf.period {
	case "":
		return domain.DateRange{StartDate: pf.from, EndDate: pf.to}, nil
	case "month":
		return attendance.CurrentMonthRange(now), nil
	case "30d":
		return attendance.Last30DaysRange(now), nil
	case "today":
		return attendance.TodayRange(now), nil
	default:
		return domain.DateRange{}, fmt.Errorf("unknown range %q: use month, 30d or today", pf.period)
	}
}

func attendanceReport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("attendance report", flag.ContinueOnError)
	var pf periodFlags
	pf.register(fs)
	var f domain.AttendanceFilter
	fs.Int64Var(&f.EmployeeID, "employee", 0, "employee id")
	fs.Int64Var(&f.DepartmentID, "department", 0, "department id")
	status := fs.String("status", "", "comma separated attendance statuses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := pf.dates(time.Now())
	if err != nil {
		return err
	}
	f.StartDate, f.EndDate = r.StartDate, r.EndDate
	for _, s := range strings.Split(*status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Status = append(f.Status, domain.AttendanceStatus(strings.ToUpper(s)))
		}
	}

	kind, err := attendance.Classify(f)
	if err != nil {
		return err
	}
	report, err := a.Attendance.Report(ctx, f)
	if err != nil {
		return err
	}

	fmt.Println(translator.ReportType(kind))
	if f.StartDate != "" {
		fmt.Printf("%s → %s\n", translator.Date(f.StartDate), translator.Date(f.EndDate))
	}
	fmt.Println()
	printReport(report)
	return nil
}

func attendanceSummary(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("attendance summary", flag.ContinueOnError)
	pf := periodFlags{period: "month"}
	pf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (pf.from != "" || pf.to != "") && !flagSet(fs, "range") {
		pf.period = ""
	}

	r, err := pf.dates(time.Now())
	if err != nil {
		return err
	}
	s, err := a.Attendance.Summary(ctx, r.StartDate, r.EndDate)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s → %s\n\n", translator.ReportType(domain.ReportAllEmployeesPeriod), translator.Date(r.StartDate), translator.Date(r.EndDate))
	fmt.Printf("Employees:         %d\n", s.TotalEmployees)
	fmt.Printf("Attendance rate:   %.1f%%\n", s.AverageAttendanceRate)
	fmt.Printf("Present days:      %d\n", s.TotalPresentDays)
	fmt.Printf("Absent days:       %d\n", s.TotalAbsentDays)
	fmt.Printf("Late days:         %d\n", s.TotalLateDays)
	fmt.Printf("Work hours:        %.1f (avg %.1f)\n", s.TotalWorkHours, s.AverageWorkHours)

	if len(s.DepartmentStats) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DEPARTMENT\tEMPLOYEES\tATTENDANCE\tPUNCTUALITY\tAVG HOURS")
		for _, d := range s.DepartmentStats {
			fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%.1f%%\t%.1f\n", d.DepartmentName, d.EmployeeCount, d.AttendanceRate, d.PunctualityRate, d.AvgWorkHours)
		}
		return w.Flush()
	}
	return nil
}

func printReport(r *domain.AttendanceReport) {
	fmt.Printf("Employee:        %s\n", r.EmployeeName)
	fmt.Printf("Department:      %s\n", r.DepartmentName)
	if r.Position != "" {
		fmt.Printf("Position:        %s\n", r.Position)
	}
	if r.TotalEmployees != nil {
		fmt.Printf("Employees:       %d\n", *r.TotalEmployees)
	}
	if r.TotalDays != nil {
		fmt.Printf("Days:            %d\n", *r.TotalDays)
	}
	fmt.Printf("Work days:       %.1f\n", r.TotalWorkDate)
	fmt.Printf("Work hours:      %.1f (avg %.1f)\n", r.TotalWorkHours, r.AverageWorkHours)
	if r.AttendanceRate != nil {
		fmt.Printf("Attendance rate: %.1f%%\n", *r.AttendanceRate)
	}
	fmt.Printf("On time:         %d\n", r.PresentInCount)
	fmt.Printf("Early:           %d\n", r.ComeEarlyCount)
	fmt.Printf("Late:            %d\n", r.LateCount)
	fmt.Printf("Left early:      %d\n", r.EarlyLeaveCount)
	fmt.Printf("Absent:          %d\n", r.AbsentCount)
	fmt.Printf("Leave:           %d\n", r.LeaveCount)
	if r.TotalNotOnTimeCount > 0 {
		fmt.Printf("Not on time:     %d (%d min)\n", r.TotalNotOnTimeCount, r.TotalNotOnTimeMinutes)
	}
	if r.OvertimeCount > 0 {
		fmt.Printf("Overtime:        %d (%d min)\n", r.OvertimeCount, r.TotalOvertimeMinutes)
	}
}
