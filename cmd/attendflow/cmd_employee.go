package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/attendflow/attendflow/internal/app"
	"github.com/attendflow/attendflow/internal/cache"
	"github.com/attendflow/attendflow/internal/domain"
)

func cmdEmployees(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow employees <list|search|get|create|update|delete|stats|departments|activity|avatar|dashboard|view>")
	}

	rest := args[1:]
	switch args[0] {
	case "list":
		return employeeList(ctx, a)
	case "search":
		return employeeSearch(ctx, a, rest)
	case "get":
		return employeeGet(ctx, a, rest)
	case "create":
		return employeeCreate(ctx, a, rest)
	case "update":
		return employeeUpdate(ctx, a, rest)
	case "delete":
		return employeeDelete(ctx, a, rest)
	case "stats":
		return employeeStats(ctx, a)
	case "departments":
		return employeeDepartments(ctx, a)
	case "activity":
		return employeeActivity(ctx, a, rest)
	case "avatar":
		return employeeAvatar(ctx, a, rest)
	case "dashboard":
		return employeeDashboard(ctx, a, rest)
	case "view":
		return employeeView(ctx, a, rest)
	default:
		return fmt.Errorf("unknown employees command: %s", args[0])
	}
}

func employeeList(ctx context.Context, a *app.App) error {
	employees, err := a.Employees.List(ctx)
	if err != nil {
		return err
	}
	printEmployees(ctx, a, employees)
	return nil
}

func employeeSearch(ctx context.Context, a *app.App, args []string) error {
	// Flags default to the filters of the previous search unless -reset is given.
	var f domain.EmployeeFilter
	if !slices.Contains(args, "-reset") && !slices.Contains(args, "--reset") {
		f, _ = a.Cache.EmployeeFilters(ctx)
	}

	fs := flag.NewFlagSet("employees search", flag.ContinueOnError)
	status := string(f.Status)
	fs.StringVar(&f.FullName, "name", f.FullName, "name contains")
	fs.StringVar(&f.Email, "email", f.Email, "email contains")
	fs.StringVar(&f.Position, "position", f.Position, "position contains")
	fs.StringVar(&f.DepartmentID, "department", f.DepartmentID, "department id")
	fs.StringVar(&status, "status", status, "employee status")
	fs.StringVar(&f.JoinDateFrom, "joined-from", f.JoinDateFrom, "earliest join date (YYYY-MM-DD)")
	fs.StringVar(&f.JoinDateTo, "joined-to", f.JoinDateTo, "latest join date (YYYY-MM-DD)")
	fs.Float64Var(&f.SalaryMin, "salary-min", f.SalaryMin, "minimum salary")
	fs.Float64Var(&f.SalaryMax, "salary-max", f.SalaryMax, "maximum salary")
	fs.IntVar(&f.Page, "page", 1, "page number")
	fs.IntVar(&f.Size, "size", f.Size, "page size")
	fs.StringVar(&f.SortBy, "sort", f.SortBy, "sort field")
	fs.StringVar(&f.SortOrder, "order", f.SortOrder, "asc or desc")
	fs.Bool("reset", false, "ignore saved filters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.Status = domain.EmployeeStatus(strings.ToUpper(status))

	page, err := a.Employees.Search(ctx, f)
	if err != nil {
		return err
	}
	saveSearchState(ctx, a.Cache, slog.Default(), f, page.Pagination)

	printEmployees(ctx, a, page.Employees)
	p := page.Pagination
	fmt.Printf("\nPage %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
	if p.HasNext {
		fmt.Printf(", next: -page %d", p.Page+1)
	}
	fmt.Println()
	return nil
}

// saveSearchState remembers the search for the next run. Failures only
// cost the user their saved filters, so they are logged and skipped.
func saveSearchState(ctx context.Context, c *cache.Cache, logger *slog.Logger, f domain.EmployeeFilter, p domain.Pagination) {
	if err := c.SetEmployeeFilters(ctx, f); err != nil {
		logger.Warn("save employee filters", "error", err)
	}
	if err := c.SetEmployeePagination(ctx, p); err != nil {
		logger.Warn("save employee pagination", "error", err)
	}
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func employeeGet(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow employees get <id>")
	}
	e, err := a.Employees.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printEmployee(e)
	return nil
}

// employeeFlags binds the editable employee fields shared by create and update.
type employeeFlags struct {
	fullName, email, phone, department, position, birthDate, address string
	joinDate, status, skills                                          string
	salary                                                            float64
}

func (ef *employeeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&ef.fullName, "name", "", "full name")
	fs.StringVar(&ef.email, "email", "", "email address")
	fs.StringVar(&ef.phone, "phone", "", "phone number")
	fs.StringVar(&ef.department, "department", "", "department id, e.g. IT")
	fs.StringVar(&ef.position, "position", "", "position")
	fs.StringVar(&ef.birthDate, "birth", "", "birth date (YYYY-MM-DD)")
	fs.StringVar(&ef.address, "address", "", "address")
	fs.StringVar(&ef.joinDate, "joined", "", "join date (YYYY-MM-DD)")
	fs.StringVar(&ef.status, "status", "", "employee status")
	fs.StringVar(&ef.skills, "skills", "", "comma separated skills")
	fs.Float64Var(&ef.salary, "salary", 0, "monthly salary")
}

func (ef *employeeFlags) salaryPtr(fs *flag.FlagSet) *float64 {
	if !flagSet(fs, "salary") {
		return nil
	}
	s := ef.salary
	return &s
}

func (ef *employeeFlags) skillList() []string {
	if ef.skills == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(ef.skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func employeeCreate(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("employees create", flag.ContinueOnError)
	var ef employeeFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := a.Employees.Create(ctx, domain.CreateEmployee{
		FullName:     ef.fullName,
		Email:        ef.email,
		PhoneNumber:  ef.phone,
		DepartmentID: ef.department,
		Position:     ef.position,
		Salary:       ef.salaryPtr(fs),
		BirthDate:    ef.birthDate,
		JoinDate:     ef.joinDate,
		Address:      ef.address,
		Skills:       ef.skillList(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created employee %s\n", e.ID)
	printEmployee(e)
	return nil
}

func employeeUpdate(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow employees update <id> [flags]")
	}
	fs := flag.NewFlagSet("employees update", flag.ContinueOnError)
	var ef employeeFlags
	ef.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	e, err := a.Employees.Update(ctx, args[0], domain.UpdateEmployee{
		FullName:     ef.fullName,
		Email:        ef.email,
		PhoneNumber:  ef.phone,
		DepartmentID: ef.department,
		Position:     ef.position,
		Salary:       ef.salaryPtr(fs),
		BirthDate:    ef.birthDate,
		Address:      ef.address,
		Skills:       ef.skillList(),
		Status:       domain.EmployeeStatus(strings.ToUpper(ef.status)),
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Updated employee %s\n", e.ID)
	printEmployee(e)
	return nil
}

func employeeDelete(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow employees delete <id>")
	}
	if err := a.Employees.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted employee %s\n", args[0])
	return nil
}

func employeeStats(ctx context.Context, a *app.App) error {
	s := a.Employees.Stats(ctx)

	fmt.Println("Workforce")
	fmt.Println("=========")
	fmt.Printf("Total:          %d\n", s.TotalEmployees)
	fmt.Printf("%-15s %d\n", translator.EmployeeStatus(domain.EmployeeActive)+":", s.ActiveEmployees)
	fmt.Printf("%-15s %d\n", translator.EmployeeStatus(domain.EmployeeInactive)+":", s.InactiveEmployees)
	fmt.Printf("%-15s %d\n", translator.EmployeeStatus(domain.EmployeeOnLeave)+":", s.OnLeaveEmployees)
	fmt.Printf("New this month: %d\n", s.NewEmployeesThisMonth)
	avg := s.AverageSalary
	fmt.Printf("Average salary: %s\n", translator.Salary(&avg))

	if len(s.DepartmentDistribution) > 0 {
		fmt.Println("\nBy department:")
		for _, d := range s.DepartmentDistribution {
			fmt.Printf("  %-20s %3d  %5.1f%%\n", d.Department, d.Count, d.Percentage)
		}
	}
	if len(s.PositionDistribution) > 0 {
		fmt.Println("\nBy position:")
		for _, p := range s.PositionDistribution {
			fmt.Printf("  %-20s %3d  %5.1f%%\n", p.Position, p.Count, p.Percentage)
		}
	}
	if len(s.AgeDistribution) > 0 {
		fmt.Println("\nBy age:")
		for _, g := range s.AgeDistribution {
			fmt.Printf("  %-20s %3d  %5.1f%%\n", g.AgeRange, g.Count, g.Percentage)
		}
	}
	return nil
}

func employeeDepartments(ctx context.Context, a *app.App) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMPLOYEES")
	for _, d := range a.Employees.Departments(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%d\n", d.ID, d.Name, d.EmployeeCount)
	}
	return w.Flush()
}

func employeeActivity(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: attendflow employees activity <id>")
	}
	acts := a.Employees.Activity(ctx, args[0])
	if len(acts) == 0 {
		fmt.Println("No activity recorded")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tBY\tDESCRIPTION")
	for _, act := range acts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", act.Timestamp, act.Action, act.PerformedBy.Name, act.Description)
	}
	return w.Flush()
}

func employeeAvatar(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: attendflow employees avatar <id> <file>")
	}
	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open avatar: %w", err)
	}
	defer f.Close()

	avatarURL, err := a.Employees.UploadAvatar(ctx, args[0], filepath.Base(args[1]), f)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Avatar uploaded: %s\n", avatarURL)
	return nil
}

func employeeDashboard(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("employees dashboard", flag.ContinueOnError)
	force := fs.Bool("force", false, "bypass the cached snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := a.Employees.Dashboard(ctx, *force)
	if err != nil {
		return err
	}
	updated := time.UnixMilli(snap.LastUpdated).Format(time.DateTime)
	fmt.Printf("%d employees in %d departments (updated %s)\n\n", len(snap.Employees), len(snap.Departments), updated)
	printEmployees(ctx, a, snap.Employees)
	return nil
}

func employeeView(ctx context.Context, a *app.App, args []string) error {
	if len(args) == 0 {
		mode, ok := a.Cache.EmployeeViewMode(ctx)
		if !ok {
			mode = cache.ViewTable
		}
		fmt.Println(mode)
		return nil
	}
	if err := a.Cache.SetEmployeeViewMode(ctx, cache.ViewMode(args[0])); err != nil {
		return err
	}
	fmt.Printf("✓ View mode set to %s\n", args[0])
	return nil
}

// printEmployees renders employees in the saved view mode.
func printEmployees(ctx context.Context, a *app.App, employees []domain.Employee) {
	if len(employees) == 0 {
		fmt.Println("No employees found")
		return
	}

	if mode, _ := a.Cache.EmployeeViewMode(ctx); mode == cache.ViewGrid {
		for _, e := range employees {
			fmt.Printf("┌ #%s %s\n", e.ID, e.FullName)
			fmt.Printf("│ %s · %s\n", e.Department.Name, orDash(e.Position))
			fmt.Printf("└ %s · %s\n\n", e.Email, translator.EmployeeStatus(e.Status))
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDEPARTMENT\tPOSITION\tSTATUS\tSALARY")
	for _, e := range employees {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.FullName, e.Email, e.Department.Name, orDash(e.Position),
			translator.EmployeeStatus(e.Status), translator.Salary(e.Salary))
	}
	w.Flush()
}

func printEmployee(e *domain.Employee) {
	fmt.Printf("ID:          %s\n", e.ID)
	fmt.Printf("Name:        %s\n", e.FullName)
	fmt.Printf("Email:       %s\n", e.Email)
	fmt.Printf("Phone:       %s\n", orDash(e.PhoneNumber))
	fmt.Printf("Department:  %s\n", e.Department.Name)
	fmt.Printf("Position:    %s\n", orDash(e.Position))
	fmt.Printf("Status:      %s\n", translator.EmployeeStatus(e.Status))
	fmt.Printf("Salary:      %s\n", translator.Salary(e.Salary))
	fmt.Printf("Joined:      %s\n", translator.Date(e.JoinDate))
	if e.BirthDate != "" {
		fmt.Printf("Born:        %s\n", translator.Date(e.BirthDate))
	}
	if len(e.Skills) > 0 {
		fmt.Printf("Skills:      %s\n", strings.Join(e.Skills, ", "))
	}
	if e.Avatar != "" {
		fmt.Printf("Avatar:      %s\n", e.Avatar)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
