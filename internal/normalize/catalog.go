package normalize

import (
	"fmt"

	"github.com/attendflow/attendflow/internal/domain"
)

// payload returns the data member of a {success, data} envelope, or the
// value itself when it is not wrapped.
func payload(v any) any {
	if o, ok := asObject(v); ok && o.has("data") {
		return o["data"]
	}
	return v
}

// Stats normalizes employee statistics.
func Stats(raw any) (*domain.EmployeeStats, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(payload(v))
	if !ok {
		return nil, formatError("stats", "not an object", []string{"totalEmployees", "activeEmployees"}, v)
	}

	stats := &domain.EmployeeStats{
		TotalEmployees:         o.integer("totalEmployees"),
		ActiveEmployees:        o.integer("activeEmployees"),
		InactiveEmployees:      o.integer("inactiveEmployees"),
		OnLeaveEmployees:       o.integer("onLeaveEmployees"),
		NewEmployeesThisMonth:  o.integer("newEmployeesThisMonth"),
		AverageSalary:          o.float("averageSalary"),
		DepartmentDistribution: []domain.DepartmentShare{},
		PositionDistribution:   []domain.PositionShare{},
		AgeDistribution:        []domain.AgeShare{},
	}
	for _, s := range objects(o["departmentDistribution"]) {
		stats.DepartmentDistribution = append(stats.DepartmentDistribution, domain.DepartmentShare{
			Department: s.str("department"),
			Count:      s.integer("count"),
			Percentage: s.float("percentage"),
		})
	}
	for _, s := range objects(o["positionDistribution"]) {
		stats.PositionDistribution = append(stats.PositionDistribution, domain.PositionShare{
			Position:   s.str("position"),
			Count:      s.integer("count"),
			Percentage: s.float("percentage"),
		})
	}
	for _, s := range objects(o["ageDistribution"]) {
		stats.AgeDistribution = append(stats.AgeDistribution, domain.AgeShare{
			AgeRange:   s.str("ageRange"),
			Count:      s.integer("count"),
			Percentage: s.float("percentage"),
		})
	}
	return stats, nil
}

// Departments normalizes a department listing.
func Departments(raw any) ([]domain.Department, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	arr, ok := payload(v).([]any)
	if !ok {
		return nil, formatError("departments", "not an array", []string{"id", "name"}, v)
	}

	out := make([]domain.Department, 0, len(arr))
	for _, d := range objects(arr) {
		dept := domain.Department{
			ID:              d.str("id"),
			Name:            d.str("name", "departmentName"),
			Description:     d.str("description", "displayName"),
			EmployeeCount:   d.integer("employeeCount"),
			Location:        d.str("location"),
			Budget:          d.float("budget"),
			EstablishedDate: d.str("establishedDate"),
		}
		if m, ok := d.obj("manager"); ok {
			dept.Manager = &domain.DepartmentRef{ID: m.str("id"), Name: m.str("name", "fullName")}
		}
		out = append(out, dept)
	}
	return out, nil
}

// Activity normalizes an employee activity log.
func Activity(raw any) ([]domain.EmployeeActivity, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	arr, ok := payload(v).([]any)
	if !ok {
		return nil, fmt.Errorf("%w: activity is not an array", ErrUnrecognizedFormat)
	}

	out := make([]domain.EmployeeActivity, 0, len(arr))
	for _, a := range objects(arr) {
		entry := domain.EmployeeActivity{
			ID:          a.str("id"),
			EmployeeID:  a.str("employeeId"),
			Action:      a.str("action"),
			Description: a.str("description"),
			Timestamp:   a.str("timestamp"),
		}
		if by, ok := a.obj("performedBy"); ok {
			entry.PerformedBy = domain.Actor{ID: by.str("id"), Name: by.str("name")}
		}
		if meta, ok := a.obj("metadata"); ok {
			entry.Metadata = meta
		}
		out = append(out, entry)
	}
	return out, nil
}

func objects(v any) []object {
	arr, _ := v.([]any)
	out := make([]object, 0, len(arr))
	for _, item := range arr {
		if o, ok := asObject(item); ok {
			out = append(out, o)
		}
	}
	return out
}
