package domain

// EmployeeStatus is the employment status of an employee.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "ACTIVE"
	EmployeeInactive   EmployeeStatus = "INACTIVE"
	EmployeeSuspended  EmployeeStatus = "SUSPENDED"
	EmployeeOnLeave    EmployeeStatus = "ON_LEAVE"
	EmployeeTerminated EmployeeStatus = "TERMINATED"
	EmployeePending    EmployeeStatus = "PENDING"
)

// EmergencyContact is who to call for an employee.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Employee is the canonical employee record.
type Employee struct {
	ID               string            `json:"id"`
	Username         string            `json:"username,omitempty"`
	FullName         string            `json:"fullName"`
	FirstName        string            `json:"firstName,omitempty"`
	LastName         string            `json:"lastName,omitempty"`
	Email            string            `json:"email"`
	PhoneNumber      string            `json:"phoneNumber"`
	Avatar           string            `json:"avatar,omitempty"`
	Department       DepartmentRef     `json:"department"`
	Position         string            `json:"position,omitempty"`
	JobTitle         string            `json:"jobTitle,omitempty"`
	Status           EmployeeStatus    `json:"status"`
	Salary           *float64          `json:"salary,omitempty"`
	BirthDate        string            `json:"birthDate,omitempty"`
	JoinDate         string            `json:"joinDate"`
	Address          string            `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	Skills           []string          `json:"skills"`
	Roles            []Role            `json:"roles"`
	CreatedAt        string            `json:"createdAt"`
	UpdatedAt        string            `json:"updatedAt"`
	LastLoginAt      string            `json:"lastLoginAt,omitempty"`
}

// CreateEmployee is the body of an employee creation.
type CreateEmployee struct {
	Username         string            `json:"username,omitempty"`
	FullName         string            `json:"fullName"`
	FirstName        string            `json:"firstName,omitempty"`
	LastName         string            `json:"lastName,omitempty"`
	Email            string            `json:"email"`
	PhoneNumber      string            `json:"phoneNumber"`
	DepartmentID     string            `json:"departmentId"`
	DepartmentName   string            `json:"departmentName,omitempty"`
	Position         string            `json:"position,omitempty"`
	JobTitle         string            `json:"jobTitle,omitempty"`
	Salary           *float64          `json:"salary,omitempty"`
	BirthDate        string            `json:"birthDate,omitempty"`
	JoinDate         string            `json:"joinDate"`
	Address          string            `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	Skills           []string          `json:"skills,omitempty"`
	Password         string            `json:"password,omitempty"`
}

// UpdateEmployee is the body of an employee update. Zero fields are omitted.
type UpdateEmployee struct {
	ID               string            `json:"id"`
	FullName         string            `json:"fullName,omitempty"`
	FirstName        string            `json:"firstName,omitempty"`
	LastName         string            `json:"lastName,omitempty"`
	Email            string            `json:"email,omitempty"`
	PhoneNumber      string            `json:"phoneNumber,omitempty"`
	DepartmentID     string            `json:"departmentId,omitempty"`
	DepartmentName   string            `json:"departmentName,omitempty"`
	Position         string            `json:"position,omitempty"`
	JobTitle         string            `json:"jobTitle,omitempty"`
	Salary           *float64          `json:"salary,omitempty"`
	BirthDate        string            `json:"birthDate,omitempty"`
	Address          string            `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	Skills           []string          `json:"skills,omitempty"`
	Status           EmployeeStatus    `json:"status,omitempty"`
}

// EmployeeFilter holds search criteria. Name, Department, Limit and SortOrder
// are legacy spellings of FullName, DepartmentID, Size and Direction.
type EmployeeFilter struct {
	ID           string         `json:"id,omitempty"`
	Username     string         `json:"username,omitempty"`
	FullName     string         `json:"fullName,omitempty"`
	Email        string         `json:"email,omitempty"`
	PhoneNumber  string         `json:"phoneNumber,omitempty"`
	Position     string         `json:"position,omitempty"`
	Name         string         `json:"name,omitempty"`
	Department   string         `json:"department,omitempty"`
	DepartmentID string         `json:"departmentId,omitempty"`
	Status       EmployeeStatus `json:"status,omitempty"`
	JoinDateFrom string         `json:"joinDateFrom,omitempty"`
	JoinDateTo   string         `json:"joinDateTo,omitempty"`
	SalaryMin    float64        `json:"salaryMin,omitempty"`
	SalaryMax    float64        `json:"salaryMax,omitempty"`
	Page         int            `json:"page,omitempty"`
	Limit        int            `json:"limit,omitempty"`
	Size         int            `json:"size,omitempty"`
	SortBy       string         `json:"sortBy,omitempty"`
	SortOrder    string         `json:"sortOrder,omitempty"`
	Direction    string         `json:"direction,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// EmployeePage is a page of employees.
type EmployeePage struct {
	Employees  []Employee `json:"employees"`
	Pagination Pagination `json:"pagination"`
}

// Department is a full department record.
type Department struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Manager         *DepartmentRef `json:"manager,omitempty"`
	EmployeeCount   int            `json:"employeeCount,omitempty"`
	Location        string         `json:"location,omitempty"`
	Budget          float64        `json:"budget,omitempty"`
	EstablishedDate string         `json:"establishedDate,omitempty"`
}

// DepartmentShare is the headcount of one department.
type DepartmentShare struct {
	Department string  `json:"department"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PositionShare is the headcount of one position.
type PositionShare struct {
	Position   string  `json:"position"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AgeShare is the headcount of one age range.
type AgeShare struct {
	AgeRange   string  `json:"ageRange"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// EmployeeStats aggregates the workforce.
type EmployeeStats struct {
	TotalEmployees         int               `json:"totalEmployees"`
	ActiveEmployees        int               `json:"activeEmployees"`
	InactiveEmployees      int               `json:"inactiveEmployees"`
	OnLeaveEmployees       int               `json:"onLeaveEmployees"`
	NewEmployeesThisMonth  int               `json:"newEmployeesThisMonth"`
	AverageSalary          float64           `json:"averageSalary"`
	DepartmentDistribution []DepartmentShare `json:"departmentDistribution"`
	PositionDistribution   []PositionShare   `json:"positionDistribution"`
	AgeDistribution        []AgeShare        `json:"ageDistribution"`
}

// Actor identifies who performed an activity.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmployeeActivity is one entry of an employee's activity log.
type EmployeeActivity struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employeeId"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Timestamp   string         `json:"timestamp"`
	PerformedBy Actor          `json:"performedBy"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
