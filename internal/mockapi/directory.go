package mockapi

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrDuplicateEmail   = errors.New("email already in use")
)

const dateLayout = "2006-01-02"

// SeedDepartments is the department table of a fresh server.
var SeedDepartments = []domain.Department{
	{ID: "IT", Name: "Phòng công nghệ thông tin", Location: "Tầng 5"},
	{ID: "HR", Name: "Human Resources", Location: "Tầng 2"},
	{ID: "ACCOUNTING", Name: "Phòng kế toán", Location: "Tầng 3"},
	{ID: "MARKETING", Name: "Phòng quảng bá", Location: "Tầng 4"},
	{ID: "QA", Name: "Đảm bảo chất lượng", Location: "Tầng 5"},
}

type seedEmployee struct {
	username, fullName, email, phone, dept, position string
	salary                                           float64
	status                                           domain.EmployeeStatus
	joinDate, birthDate                              string
}

var seedEmployees = []seedEmployee{
	{"admin", "Quản trị viên", "admin@attendflow.local", "0900000001", "IT", "System Administrator", 30000000, domain.EmployeeActive, "2020-01-06", "1988-04-12"},
	{"lan.nguyen", "Nguyễn Thị Lan", "lan.nguyen@attendflow.local", "0900000002", "HR", "HR Manager", 25000000, domain.EmployeeActive, "2021-03-15", "1990-07-21"},
	{"minh.tran", "Trần Văn Minh", "minh.tran@attendflow.local", "0900000003", "IT", "Backend Developer", 22000000, domain.EmployeeActive, "2022-06-01", "1995-11-02"},
	{"hoa.le", "Lê Thị Hoa", "hoa.le@attendflow.local", "0900000004", "ACCOUNTING", "Accountant", 15000000, domain.EmployeeOnLeave, "2019-09-09", "1992-01-30"},
	{"duc.pham", "Phạm Anh Đức", "duc.pham@attendflow.local", "0900000005", "MARKETING", "Marketing Specialist", 18000000, domain.EmployeeActive, "2023-02-20", "1997-05-17"},
	{"thu.vo", "Võ Minh Thư", "thu.vo@attendflow.local", "0900000006", "QA", "QA Engineer", 0, domain.EmployeeInactive, "2024-08-12", "1999-12-08"},
}

// Directory is the in-memory employee and department table.
type Directory struct {
	now func() time.Time

	mu          sync.RWMutex
	nextID      int64
	employees   map[int64]*domain.Employee
	departments []domain.Department
	activity    map[int64][]domain.EmployeeActivity
}

// NewDirectory creates an empty directory with the seed departments.
func NewDirectory(now func() time.Time) *Directory {
	depts := make([]domain.Department, len(SeedDepartments))
	copy(depts, SeedDepartments)
	return &Directory{
		now:         now,
		employees:   make(map[int64]*domain.Employee),
		departments: depts,
		activity:    make(map[int64][]domain.EmployeeActivity),
	}
}

func (d *Directory) departmentRef(id string) domain.DepartmentRef {
	for _, dept := range d.departments {
		if strings.EqualFold(dept.ID, id) || dept.Name == id {
			return domain.DepartmentRef{ID: dept.ID, Name: dept.Name}
		}
	}
	if id == "" {
		return domain.DepartmentRef{ID: "0", Name: domain.UnknownDepartmentName}
	}
	return domain.DepartmentRef{ID: id, Name: id}
}

// Create adds an employee and returns it.
func (d *Directory) Create(req domain.CreateEmployee, actor string) (domain.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.employees {
		if req.Email != "" && strings.EqualFold(e.Email, req.Email) {
			return domain.Employee{}, ErrDuplicateEmail
		}
	}

	d.nextID++
	id := d.nextID
	now := d.now().UTC().Format(time.RFC3339)
	dept := d.departmentRef(req.DepartmentID)
	if req.DepartmentID == "" && req.DepartmentName != "" {
		dept = d.departmentRef(req.DepartmentName)
	}

	e := &domain.Employee{
		ID:               strconv.FormatInt(id, 10),
		Username:         req.Username,
		FullName:         req.FullName,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		Department:       dept,
		Position:         req.Position,
		JobTitle:         cmp.Or(req.JobTitle, req.Position),
		Status:           domain.EmployeeActive,
		Salary:           req.Salary,
		BirthDate:        req.BirthDate,
		JoinDate:         cmp.Or(req.JoinDate, d.now().Format(dateLayout)),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		Skills:           append([]string{}, req.Skills...),
		Roles:            []domain.Role{{ID: "1", Name: domain.DefaultRole}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	d.employees[id] = e
	d.recordLocked(id, "CREATED", "Employee record created", actor)
	return *e, nil
}

// Get returns the employee with id.
func (d *Directory) Get(id string) (domain.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.lookupLocked(id)
	if !ok {
		return domain.Employee{}, ErrEmployeeNotFound
	}
	return *e, nil
}

func (d *Directory) lookupLocked(id string) (*domain.Employee, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, false
	}
	e, ok := d.employees[n]
	return e, ok
}

// Update applies the non-zero fields of req.
func (d *Directory) Update(id string, req domain.UpdateEmployee, actor string) (domain.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.lookupLocked(id)
	if !ok {
		return domain.Employee{}, ErrEmployeeNotFound
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&e.FullName, req.FullName)
	set(&e.FirstName, req.FirstName)
	set(&e.LastName, req.LastName)
	set(&e.Email, req.Email)
	set(&e.PhoneNumber, req.PhoneNumber)
	set(&e.Position, req.Position)
	set(&e.JobTitle, req.JobTitle)
	set(&e.BirthDate, req.BirthDate)
	set(&e.Address, req.Address)
	if req.DepartmentID != "" {
		e.Department = d.departmentRef(req.DepartmentID)
	} else if req.DepartmentName != "" {
		e.Department = d.departmentRef(req.DepartmentName)
	}
	if req.Salary != nil {
		e.Salary = req.Salary
	}
	if req.EmergencyContact != nil {
		e.EmergencyContact = req.EmergencyContact
	}
	if req.Skills != nil {
		e.Skills = append([]string{}, req.Skills...)
	}
	if req.Status != "" {
		e.Status = req.Status
	}
	e.UpdatedAt = d.now().UTC().Format(time.RFC3339)

	n, _ := strconv.ParseInt(id, 10, 64)
	d.recordLocked(n, "UPDATED", "Employee record updated", actor)
	return *e, nil
}

// SetAvatar stores the avatar URL of an employee.
func (d *Directory) SetAvatar(id, url, actor string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.lookupLocked(id)
	if !ok {
		return ErrEmployeeNotFound
	}
	e.Avatar = url
	e.UpdatedAt = d.now().UTC().Format(time.RFC3339)
	n, _ := strconv.ParseInt(id, 10, 64)
	d.recordLocked(n, "AVATAR_UPDATED", "Avatar uploaded", actor)
	return nil
}

// Delete removes an employee.
func (d *Directory) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrEmployeeNotFound
	}
	if _, ok := d.employees[n]; !ok {
		return ErrEmployeeNotFound
	}
	delete(d.employees, n)
	delete(d.activity, n)
	return nil
}

func (d *Directory) recordLocked(id int64, action, description, actor string) {
	entries := d.activity[id]
	d.activity[id] = append(entries, domain.EmployeeActivity{
		ID:          strconv.Itoa(len(entries) + 1),
		EmployeeID:  strconv.FormatInt(id, 10),
		Action:      action,
		Description: description,
		Timestamp:   d.now().UTC().Format(time.RFC3339),
		PerformedBy: domain.Actor{ID: actor, Name: actor},
	})
}

// Activity returns the activity log of an employee.
func (d *Directory) Activity(id string) ([]domain.EmployeeActivity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrEmployeeNotFound
	}
	if _, ok := d.employees[n]; !ok {
		return nil, ErrEmployeeNotFound
	}
	return append([]domain.EmployeeActivity{}, d.activity[n]...), nil
}

// All returns every employee ordered by id.
func (d *Directory) All() []domain.Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sortedLocked()
}

func (d *Directory) sortedLocked() []domain.Employee {
	ids := make([]int64, 0, len(d.employees))
	for id := range d.employees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		out = append(out, *d.employees[id])
	}
	return out
}

// Search filters, sorts and pages the employees.
func (d *Directory) Search(f domain.EmployeeFilter) domain.EmployeePage {
	d.mu.RLock()
	matched := slices.DeleteFunc(d.sortedLocked(), func(e domain.Employee) bool { return !matches(e, f) })
	d.mu.RUnlock()

	sortEmployees(matched, f.SortBy, f.Direction)

	size := cmp.Or(f.Size, f.Limit, 10)
	page := max(f.Page, 1)
	total := len(matched)
	totalPages := max((total+size-1)/size, 1)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return domain.EmployeePage{
		Employees: matched[start:end],
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      size,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

func matches(e domain.Employee, f domain.EmployeeFilter) bool {
	contains := func(field, q string) bool {
		return q == "" || strings.Contains(strings.ToLower(field), strings.ToLower(q))
	}
	switch {
	case f.ID != "" && e.ID != f.ID:
		return false
	case !contains(e.Username, f.Username):
		return false
	case !contains(e.FullName, cmp.Or(f.FullName, f.Name)):
		return false
	case !contains(e.Email, f.Email):
		return false
	case !contains(e.PhoneNumber, f.PhoneNumber):
		return false
	case !contains(e.Position, f.Position):
		return false
	case f.Status != "" && !strings.EqualFold(string(e.Status), string(f.Status)):
		return false
	case f.JoinDateFrom != "" && e.JoinDate < f.JoinDateFrom:
		return false
	case f.JoinDateTo != "" && e.JoinDate > f.JoinDateTo:
		return false
	}
	if dept := cmp.Or(f.DepartmentID, f.Department); dept != "" &&
		!strings.EqualFold(e.Department.ID, dept) && e.Department.Name != dept {
		return false
	}
	salary := 0.0
	if e.Salary != nil {
		salary = *e.Salary
	}
	if f.SalaryMin != 0 && salary < f.SalaryMin {
		return false
	}
	if f.SalaryMax != 0 && salary > f.SalaryMax {
		return false
	}
	return true
}

func sortEmployees(list []domain.Employee, by, direction string) {
	key := func(e domain.Employee) string {
		switch by {
		case "fullName":
			return strings.ToLower(e.FullName)
		case "email":
			return strings.ToLower(e.Email)
		case "joinDate":
			return e.JoinDate
		case "position":
			return strings.ToLower(e.Position)
		}
		return ""
	}
	var compare func(a, b domain.Employee) int
	switch by {
	case "salary":
		compare = func(a, b domain.Employee) int { return cmp.Compare(salaryOf(a), salaryOf(b)) }
	case "fullName", "email", "joinDate", "position":
		compare = func(a, b domain.Employee) int { return cmp.Compare(key(a), key(b)) }
	default:
		compare = func(a, b domain.Employee) int { return cmp.Compare(idOf(a), idOf(b)) }
	}
	if strings.EqualFold(direction, "desc") {
		slices.SortStableFunc(list, func(a, b domain.Employee) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(list, compare)
}

func salaryOf(e domain.Employee) float64 {
	if e.Salary == nil {
		return 0
	}
	return *e.Salary
}

func idOf(e domain.Employee) int64 {
	n, _ := strconv.ParseInt(e.ID, 10, 64)
	return n
}

// Departments returns the department table with live head counts.
func (d *Directory) Departments() []domain.Department {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Department, len(d.departments))
	copy(out, d.departments)
	for i := range out {
		for _, e := range d.employees {
			if e.Department.ID == out[i].ID {
				out[i].EmployeeCount++
			}
		}
	}
	return out
}

// Stats computes workforce statistics.
func (d *Directory) Stats() domain.EmployeeStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	now := d.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dateLayout)

	stats := domain.EmployeeStats{
		TotalEmployees:         len(d.employees),
		DepartmentDistribution: []domain.DepartmentShare{},
		PositionDistribution:   []domain.PositionShare{},
		AgeDistribution:        []domain.AgeShare{},
	}

	byDept := map[string]int{}
	byPosition := map[string]int{}
	byAge := map[string]int{}
	var salaryTotal float64
	var salaried int

	for _, e := range d.employees {
		switch e.Status {
		case domain.EmployeeActive:
			stats.ActiveEmployees++
		case domain.EmployeeOnLeave:
			stats.OnLeaveEmployees++
		default:
			stats.InactiveEmployees++
		}
		if e.JoinDate >= monthStart {
			stats.NewEmployeesThisMonth++
		}
		if e.Salary != nil && *e.Salary > 0 {
			salaryTotal += *e.Salary
			salaried++
		}
		byDept[e.Department.Name]++
		if e.Position != "" {
			byPosition[e.Position]++
		}
		if r := ageRange(e.BirthDate, now); r != "" {
			byAge[r]++
		}
	}
	if salaried > 0 {
		stats.AverageSalary = salaryTotal / float64(salaried)
	}

	pct := func(n int) float64 {
		if stats.TotalEmployees == 0 {
			return 0
		}
		return float64(n) / float64(stats.TotalEmployees) * 100
	}
	for _, name := range sortedKeys(byDept) {
		stats.DepartmentDistribution = append(stats.DepartmentDistribution, domain.DepartmentShare{Department: name, Count: byDept[name], Percentage: pct(byDept[name])})
	}
	for _, name := range sortedKeys(byPosition) {
		stats.PositionDistribution = append(stats.PositionDistribution, domain.PositionShare{Position: name, Count: byPosition[name], Percentage: pct(byPosition[name])})
	}
	for _, name := range sortedKeys(byAge) {
		stats.AgeDistribution = append(stats.AgeDistribution, domain.AgeShare{AgeRange: name, Count: byAge[name], Percentage: pct(byAge[name])})
	}
	return stats
}

func ageRange(birthDate string, now time.Time) string {
	b, err := time.Parse(dateLayout, birthDate)
	if err != nil {
		return ""
	}
	age := now.Year() - b.Year()
	if now.YearDay() < b.YearDay() {
		age--
	}
	switch {
	case age < 25:
		return "<25"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	}
	return "45+"
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
