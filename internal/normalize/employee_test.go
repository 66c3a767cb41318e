package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/attendflow/attendflow/internal/domain"
)

func TestEmployee_Aliases(t *testing.T) {
	raw := []byte(`{
		"data": {
			"employeeId": 42,
			"first_name": "Lan",
			"last_name": "Nguyen",
			"phone": "0900",
			"avatarUrl": "/a.png",
			"departmentId": 3,
			"departmentName": "HR",
			"jobTitle": "Recruiter",
			"salary": "1500000.5",
			"dateOfBirth": "1990-01-02",
			"join_date": "2020-05-01",
			"emergency_contact": {"name": "Mai", "phone": "0911", "relationship": "sister"},
			"role": "MANAGER",
			"created_at": "2020-05-01T00:00:00Z"
		}
	}`)

	e, err := testNormalizer().Employee(raw)
	if err != nil {
		t.Fatalf("Employee() error = %v", err)
	}

	if e.ID != "42" {
		t.Errorf("ID = %q; want 42", e.ID)
	}
	if e.FirstName != "Lan" || e.LastName != "Nguyen" {
		t.Errorf("names = %q %q; want Lan Nguyen", e.FirstName, e.LastName)
	}
	if e.PhoneNumber != "0900" {
		t.Errorf("PhoneNumber = %q; want 0900", e.PhoneNumber)
	}
	if e.Department != (domain.DepartmentRef{ID: "3", Name: "HR"}) {
		t.Errorf("Department = %+v; want {3 HR}", e.Department)
	}
	if e.Position != "Recruiter" || e.JobTitle != "Recruiter" {
		t.Errorf("Position/JobTitle = %q/%q; want Recruiter", e.Position, e.JobTitle)
	}
	if e.Salary == nil || *e.Salary != 1500000.5 {
		t.Errorf("Salary = %v; want 1500000.5", e.Salary)
	}
	if e.BirthDate != "1990-01-02" || e.JoinDate != "2020-05-01" {
		t.Errorf("BirthDate/JoinDate = %q/%q", e.BirthDate, e.JoinDate)
	}
	if e.EmergencyContact == nil || e.EmergencyContact.Relationship != "sister" {
		t.Errorf("EmergencyContact = %+v; want sister", e.EmergencyContact)
	}
	if len(e.Roles) != 1 || e.Roles[0].ID != "1" || e.Roles[0].Name != "MANAGER" {
		t.Errorf("Roles = %+v; want [{1 MANAGER}]", e.Roles)
	}
	if e.CreatedAt != "2020-05-01T00:00:00Z" {
		t.Errorf("CreatedAt = %q", e.CreatedAt)
	}
	if e.UpdatedAt != "2025-03-14T09:30:00Z" {
		t.Errorf("UpdatedAt = %q; want normalization time", e.UpdatedAt)
	}
}

func TestEmployee_Defaults(t *testing.T) {
	e, err := testNormalizer().Employee([]byte(`{"firstName":"An","lastName":"Tran"}`))
	if err != nil {
		t.Fatalf("Employee() error = %v", err)
	}

	if e.ID != "0" {
		t.Errorf("ID = %q; want 0", e.ID)
	}
	if e.FullName != "An Tran" {
		t.Errorf("FullName = %q; want %q", e.FullName, "An Tran")
	}
	if e.Department != (domain.DepartmentRef{ID: "0", Name: domain.UnknownDepartmentName}) {
		t.Errorf("Department = %+v", e.Department)
	}
	if e.Status != domain.EmployeeActive {
		t.Errorf("Status = %q; want ACTIVE", e.Status)
	}
	if e.Salary != nil {
		t.Errorf("Salary = %v; want nil", *e.Salary)
	}
	if e.Skills == nil || len(e.Skills) != 0 {
		t.Errorf("Skills = %#v; want empty slice", e.Skills)
	}
	if e.Roles == nil || len(e.Roles) != 0 {
		t.Errorf("Roles = %#v; want empty slice", e.Roles)
	}
	if e.JoinDate != "2025-03-14T09:30:00Z" {
		t.Errorf("JoinDate = %q; want normalization time", e.JoinDate)
	}
}

func TestEmployee_RolesArray(t *testing.T) {
	e, err := testNormalizer().Employee([]byte(`{"roles":["ADMIN",{"name":"HR","permissions":[{"id":"p","name":"read"}]}]}`))
	if err != nil {
		t.Fatalf("Employee() error = %v", err)
	}
	want := []domain.Role{
		{ID: "1", Name: "ADMIN"},
		{ID: "2", Name: "HR", Permissions: []domain.Permission{{ID: "p", Name: "read"}}},
	}
	if !reflect.DeepEqual(e.Roles, want) {
		t.Errorf("Roles = %+v; want %+v", e.Roles, want)
	}
}

func TestEmployeeList_Shapes(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantShape     ListShape
		wantCount     int
		wantPaginated bool
		wantTotal     int
	}{
		{"data array", `{"success":true,"data":[{"id":1},{"id":2}]}`, ListDataArray, 2, false, 0},
		{"data page", `{"data":{"employees":[{"id":1}],"pagination":{"page":2,"limit":5,"total":6,"totalPages":2}}}`, ListDataPage, 1, true, 6},
		{"data page default pagination", `{"data":{"employees":[{"id":1},{"id":2},{"id":3}]}}`, ListDataPage, 3, true, 3},
		{"data object", `{"data":{"id":1,"fullName":"One"}}`, ListDataObject, 1, false, 0},
		{"bare array", `[{"id":1}]`, ListArray, 1, false, 0},
		{"page", `{"employees":[{"id":1},{"id":2}],"pagination":{"total":2}}`, ListPage, 2, true, 2},
		{"unknown", `{"items":[]}`, ListEmpty, 0, false, 0},
		{"null data", `{"success":true,"data":null}`, ListEmpty, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyEmployeeList([]byte(tt.raw)); got != tt.wantShape {
				t.Errorf("ClassifyEmployeeList() = %v; want %v", got, tt.wantShape)
			}
			list, err := testNormalizer().EmployeeList([]byte(tt.raw))
			if err != nil {
				t.Fatalf("EmployeeList() error = %v", err)
			}
			if len(list.Employees) != tt.wantCount {
				t.Errorf("len(Employees) = %d; want %d", len(list.Employees), tt.wantCount)
			}
			if (list.Pagination != nil) != tt.wantPaginated {
				t.Fatalf("Pagination = %+v; want paginated=%v", list.Pagination, tt.wantPaginated)
			}
			if list.Pagination != nil && list.Pagination.Total != tt.wantTotal {
				t.Errorf("Total = %d; want %d", list.Pagination.Total, tt.wantTotal)
			}
		})
	}
}

func TestEmployeeList_DefaultPagination(t *testing.T) {
	list, err := testNormalizer().EmployeeList([]byte(`{"data":{"employees":[{"id":1},{"id":2}]}}`))
	if err != nil {
		t.Fatalf("EmployeeList() error = %v", err)
	}
	want := domain.Pagination{Page: 1, Limit: 10, Total: 2, TotalPages: 1}
	if *list.Pagination != want {
		t.Errorf("Pagination = %+v; want %+v", *list.Pagination, want)
	}
}

func TestEmployee_Idempotent(t *testing.T) {
	tests := []string{
		`{"employeeId":"5","full_name":"X","department":{"id":2,"name":"IT"},"salary":900,"skills":["go"],"role":"USER"}`,
		`{"id":1,"roles":[{"id":"r1","name":"ADMIN","permissions":[{"id":"p","name":"all"}]}]}`,
		`{}`,
	}

	n := testNormalizer()
	for _, raw := range tests {
		first, err := n.Employee([]byte(raw))
		if err != nil {
			t.Fatalf("Employee(%s) error = %v", raw, err)
		}
		data, _ := json.Marshal(first)
		second, err := n.Employee(data)
		if err != nil {
			t.Fatalf("Employee(normalized) error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not idempotent for %s:\n first = %+v\nsecond = %+v", raw, first, second)
		}
	}
}

func TestEmployeeList_Idempotent(t *testing.T) {
	tests := []string{
		`{"data":[{"id":1}]}`,
		`{"data":{"employees":[{"id":1}]}}`,
		`[{"id":"a","firstName":"B"}]`,
		`{"nothing":true}`,
	}

	n := testNormalizer()
	for _, raw := range tests {
		first, err := n.EmployeeList([]byte(raw))
		if err != nil {
			t.Fatalf("EmployeeList(%s) error = %v", raw, err)
		}
		data, _ := json.Marshal(first)
		second, err := n.EmployeeList(data)
		if err != nil {
			t.Fatalf("EmployeeList(normalized) error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("not idempotent for %s:\n first = %+v\nsecond = %+v", raw, first, second)
		}
	}
}

func TestUser_Status(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.UserStatus
	}{
		{`{"status":"suspended"}`, domain.UserSuspended},
		{`{"active":true}`, domain.UserActive},
		{`{"active":false}`, domain.UserInactive},
		{`{"status":"ON_LEAVE"}`, domain.UserActive},
		{`{}`, domain.UserActive},
	}
	for _, tt := range tests {
		u, err := testNormalizer().User([]byte(tt.raw))
		if err != nil {
			t.Fatalf("User(%s) error = %v", tt.raw, err)
		}
		if u.Status != tt.want {
			t.Errorf("User(%s).Status = %q; want %q", tt.raw, u.Status, tt.want)
		}
	}
}

func TestUser_RolesFromString(t *testing.T) {
	u, err := testNormalizer().User([]byte(`{"data":{"id":3,"roles":"ADMIN","userName":"x","phone_number":"1"}}`))
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if len(u.Roles) != 1 || u.Roles[0].Name != "ADMIN" {
		t.Errorf("Roles = %+v; want [ADMIN]", u.Roles)
	}
	if u.Role != "ADMIN" {
		t.Errorf("Role = %q; want ADMIN", u.Role)
	}
	if u.Username != "x" || u.PhoneNumber != "1" {
		t.Errorf("Username/PhoneNumber = %q/%q", u.Username, u.PhoneNumber)
	}
}
