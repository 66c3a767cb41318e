package cache

import (
	"context"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
)

// Keys of the employee screen state.
const (
	KeyEmployeeData       = "employee_data"
	KeyEmployeeFilters    = "employee_filters"
	KeyEmployeePagination = "employee_pagination"
	KeyEmployeeViewMode   = "employee_view_mode"
)

const (
	uiStateTTL  = time.Hour
	viewModeTTL = 24 * time.Hour
)

// ViewMode is how the employee list is rendered.
type ViewMode string

const (
	ViewGrid  ViewMode = "grid"
	ViewTable ViewMode = "table"
)

// EmployeeSnapshot is the cached result of a dashboard load.
type EmployeeSnapshot struct {
	Employees         []domain.Employee    `json:"employees"`
	Departments       []domain.Department  `json:"departments"`
	Stats             domain.EmployeeStats `json:"stats"`
	FilteredEmployees []domain.Employee    `json:"filteredEmployees"`
	LastUpdated       int64                `json:"lastUpdated"`
}

// SetEmployeeData caches a snapshot with the default TTL, stamping LastUpdated.
func (c *Cache) SetEmployeeData(ctx context.Context, snap EmployeeSnapshot) error {
	snap.LastUpdated = c.now().UnixMilli()
	return c.Set(ctx, KeyEmployeeData, snap, 0)
}

// EmployeeData returns the cached snapshot.
func (c *Cache) EmployeeData(ctx context.Context) (EmployeeSnapshot, bool) {
	var snap EmployeeSnapshot
	ok := c.Get(ctx, KeyEmployeeData, &snap)
	return snap, ok
}

// SetEmployeeFilters remembers the last search for an hour.
func (c *Cache) SetEmployeeFilters(ctx context.Context, f domain.EmployeeFilter) error {
	return c.Set(ctx, KeyEmployeeFilters, f, uiStateTTL)
}

func (c *Cache) EmployeeFilters(ctx context.Context) (domain.EmployeeFilter, bool) {
	var f domain.EmployeeFilter
	ok := c.Get(ctx, KeyEmployeeFilters, &f)
	return f, ok
}

// SetEmployeePagination remembers the last page for an hour.
func (c *Cache) SetEmployeePagination(ctx context.Context, p domain.Pagination) error {
	return c.Set(ctx, KeyEmployeePagination, p, uiStateTTL)
}

func (c *Cache) EmployeePagination(ctx context.Context) (domain.Pagination, bool) {
	var p domain.Pagination
	ok := c.Get(ctx, KeyEmployeePagination, &p)
	return p, ok
}

// SetEmployeeViewMode remembers the list layout for a day.
func (c *Cache) SetEmployeeViewMode(ctx context.Context, mode ViewMode) error {
	if mode != ViewGrid && mode != ViewTable {
		return domain.ErrInvalidViewMode
	}
	return c.Set(ctx, KeyEmployeeViewMode, mode, viewModeTTL)
}

func (c *Cache) EmployeeViewMode(ctx context.Context) (ViewMode, bool) {
	var mode ViewMode
	ok := c.Get(ctx, KeyEmployeeViewMode, &mode)
	return mode, ok
}

// InvalidateEmployeeCache drops the cached snapshot after a mutation.
func (c *Cache) InvalidateEmployeeCache(ctx context.Context) {
	c.Remove(ctx, KeyEmployeeData)
}
