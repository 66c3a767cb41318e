package normalize

import (
	"strconv"
	"strings"

	"github.com/attendflow/attendflow/internal/domain"
)

// ListShape identifies the layout of an employee listing.
type ListShape int

const (
	ListEmpty ListShape = iota
	// ListDataArray: {data:[...]}.
	ListDataArray
	// ListDataPage: {data:{employees:[...], pagination}}.
	ListDataPage
	// ListDataObject: {data:{...single employee...}}.
	ListDataObject
	// ListArray: [...].
	ListArray
	// ListPage: {employees:[...], pagination}.
	ListPage
)

func (s ListShape) String() string {
	switch s {
	case ListDataArray:
		return "data-array"
	case ListDataPage:
		return "data-page"
	case ListDataObject:
		return "data-object"
	case ListArray:
		return "array"
	case ListPage:
		return "page"
	}
	return "empty"
}

// EmployeeList is a normalized listing. Pagination is nil when the backend
// returned no paging information.
type EmployeeList struct {
	Employees  []domain.Employee  `json:"employees"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

// ClassifyEmployeeList returns the shape a listing payload is parsed as.
func ClassifyEmployeeList(raw any) ListShape {
	v, err := toValue(raw)
	if err != nil {
		return ListEmpty
	}
	return classifyList(v)
}

func classifyList(v any) ListShape {
	if _, ok := v.([]any); ok {
		return ListArray
	}
	o, ok := asObject(v)
	if !ok {
		return ListEmpty
	}
	if o.truthy("data") {
		switch data := o["data"].(type) {
		case []any:
			return ListDataArray
		case map[string]any:
			if _, ok := data["employees"].([]any); ok {
				return ListDataPage
			}
			return ListDataObject
		}
	}
	if _, ok := o["employees"].([]any); ok {
		return ListPage
	}
	return ListEmpty
}

// EmployeeList normalizes a listing payload. Unknown layouts yield an
// empty list, never an error.
func (n *Normalizer) EmployeeList(raw any) (*EmployeeList, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}

	out := &EmployeeList{Employees: []domain.Employee{}}
	switch classifyList(v) {
	case ListDataArray:
		data, _ := asObject(v)
		out.Employees = n.employees(data["data"])

	case ListDataPage:
		o, _ := asObject(v)
		data, _ := o.obj("data")
		out.Employees = n.employees(data["employees"])
		if p, ok := data.obj("pagination"); ok {
			out.Pagination = pagination(p)
		} else {
			out.Pagination = &domain.Pagination{
				Page:       1,
				Limit:      10,
				Total:      len(out.Employees),
				TotalPages: 1,
			}
		}

	case ListDataObject:
		o, _ := asObject(v)
		data, _ := o.obj("data")
		out.Employees = []domain.Employee{n.employeeFrom(data)}

	case ListArray:
		out.Employees = n.employees(v)

	case ListPage:
		o, _ := asObject(v)
		out.Employees = n.employees(o["employees"])
		if p, ok := o.obj("pagination"); ok {
			out.Pagination = pagination(p)
		}
	}
	return out, nil
}

func (n *Normalizer) employees(v any) []domain.Employee {
	arr, _ := v.([]any)
	out := make([]domain.Employee, 0, len(arr))
	for _, item := range arr {
		if o, ok := asObject(item); ok {
			out = append(out, n.employeeFrom(o))
		}
	}
	return out
}

func pagination(o object) *domain.Pagination {
	return &domain.Pagination{
		Page:       o.integer("page"),
		Limit:      o.integer("limit"),
		Total:      o.integer("total"),
		TotalPages: o.integer("totalPages"),
		HasNext:    truthy(o["hasNext"]),
		HasPrev:    truthy(o["hasPrev"]),
	}
}

// Employee normalizes a single employee payload, unwrapping data.
func (n *Normalizer) Employee(raw any) (domain.Employee, error) {
	v, err := toValue(raw)
	if err != nil {
		return domain.Employee{}, err
	}
	o, ok := asObject(v)
	if !ok {
		return domain.Employee{}, formatError("employee", "not an object", []string{"id", "fullName", "email"}, v)
	}
	if data, ok := o.obj("data"); ok {
		o = data
	}
	return n.employeeFrom(o), nil
}

func (n *Normalizer) employeeFrom(o object) domain.Employee {
	now := n.nowString()

	firstName := o.str("firstName", "first_name")
	lastName := o.str("lastName", "last_name")
	fullName := o.str("fullName", "full_name")
	if fullName == "" {
		fullName = strings.TrimSpace(o.str("firstName") + " " + o.str("lastName"))
	}

	dept, _ := o.obj("department")

	e := domain.Employee{
		ID:          orDefault(o.str("id", "employeeId"), "0"),
		Username:    o.str("username", "userName"),
		FullName:    fullName,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       o.str("email"),
		PhoneNumber: o.str("phoneNumber", "phone_number", "phone"),
		Avatar:      o.str("avatar", "avatarUrl"),
		Department: domain.DepartmentRef{
			ID:   orDefault(orDefault(dept.str("id"), o.str("departmentId")), "0"),
			Name: orDefault(orDefault(dept.str("name"), o.str("departmentName", "departmentDisplayName")), domain.UnknownDepartmentName),
		},
		Position:    o.str("position", "jobTitle"),
		JobTitle:    o.str("jobTitle", "position"),
		Status:      domain.EmployeeStatus(orDefault(o.str("status"), string(domain.EmployeeActive))),
		BirthDate:   o.str("birthDate", "birth_date", "dateOfBirth"),
		JoinDate:    orDefault(o.str("joinDate", "join_date"), now),
		Address:     o.str("address"),
		Skills:      o.strings("skills"),
		Roles:       employeeRoles(o),
		CreatedAt:   orDefault(o.str("createdAt", "created_at"), now),
		UpdatedAt:   orDefault(o.str("updatedAt", "updated_at"), now),
		LastLoginAt: o.str("lastLoginAt", "last_login_at"),
	}

	if o.truthy("salary") {
		if f, ok := number(o["salary"]); ok {
			e.Salary = &f
		}
	}

	contact, ok := o.obj("emergencyContact")
	if !ok {
		contact, ok = o.obj("emergency_contact")
	}
	if ok {
		e.EmergencyContact = &domain.EmergencyContact{
			Name:         contact.str("name"),
			Phone:        contact.str("phone"),
			Relationship: contact.str("relationship"),
		}
	}
	return e
}

func employeeRoles(o object) []domain.Role {
	if arr, ok := o["roles"].([]any); ok {
		return roleList(arr)
	}
	if role := o.str("role"); role != "" {
		return []domain.Role{{ID: "1", Name: role}}
	}
	return []domain.Role{}
}

// roleList maps role arrays whose elements are role objects or bare names.
func roleList(arr []any) []domain.Role {
	out := make([]domain.Role, 0, len(arr))
	for i, item := range arr {
		fallbackID := strconv.Itoa(i + 1)
		if name := stringify(item); name != "" {
			out = append(out, domain.Role{ID: fallbackID, Name: name})
			continue
		}
		r, ok := asObject(item)
		if !ok {
			continue
		}
		role := domain.Role{
			ID:   orDefault(r.str("id"), fallbackID),
			Name: r.str("name"),
		}
		perms, _ := r["permissions"].([]any)
		for _, p := range perms {
			if po, ok := asObject(p); ok {
				role.Permissions = append(role.Permissions, domain.Permission{
					ID:       po.str("id"),
					Name:     po.str("name"),
					Resource: po.str("resource"),
					Action:   po.str("action"),
				})
			}
		}
		out = append(out, role)
	}
	return out
}

// userFrom maps an employee or user object onto the session user. A nil
// object yields the unknown user.
func (n *Normalizer) userFrom(o object) domain.User {
	now := n.nowString()
	if o == nil {
		return domain.User{
			ID:         "1",
			Username:   "unknown",
			FullName:   "Unknown User",
			Department: domain.DepartmentRef{ID: "1", Name: "Unknown"},
			Role:       domain.DefaultRole,
			Status:     domain.UserActive,
			Roles:      []domain.Role{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	dept, _ := o.obj("department")

	status := o["status"]
	if !truthy(status) {
		status = o["active"]
	}

	roles := []domain.Role{}
	switch r := o["roles"].(type) {
	case []any:
		roles = roleList(r)
	default:
		if name := o.str("roles", "role"); name != "" {
			roles = []domain.Role{{ID: "1", Name: name}}
		}
	}

	role := o.str("role")
	if role == "" && len(roles) > 0 {
		role = roles[0].Name
	}

	return domain.User{
		ID:          orDefault(o.str("id"), "1"),
		EmployeeID:  o.str("employeeId"),
		Username:    o.str("username", "userName"),
		Email:       o.str("email"),
		FullName:    o.str("fullName", "full_name", "name"),
		PhoneNumber: o.str("phoneNumber", "phone_number"),
		Avatar:      o.str("avatar"),
		Department: domain.DepartmentRef{
			ID:   orDefault(orDefault(dept.str("id"), o.str("departmentId")), "1"),
			Name: orDefault(dept.str("name", "departmentName"), orDefault(o.str("departmentName"), domain.UnknownDepartmentName)),
		},
		Position:    o.str("position", "jobTitle"),
		Role:        orDefault(role, domain.DefaultRole),
		Status:      userStatus(status),
		Roles:       roles,
		CreatedAt:   orDefault(o.str("createdAt", "created_at"), now),
		UpdatedAt:   orDefault(o.str("updatedAt", "updated_at"), now),
		LastLoginAt: o.str("lastLoginAt", "last_login_at"),
	}
}

// userStatus accepts a status string or a boolean active flag.
func userStatus(v any) domain.UserStatus {
	switch t := v.(type) {
	case bool:
		if t {
			return domain.UserActive
		}
		return domain.UserInactive
	case string:
		s := domain.UserStatus(strings.ToUpper(t))
		if s.Valid() {
			return s
		}
	}
	return domain.UserActive
}
