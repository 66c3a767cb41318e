package domain

// Defaults used when the backend omits a value.
const (
	DefaultRole           = "USER"
	UnknownDepartmentName = "Unknown Department"
)

// Placeholder tokens are issued locally when the backend confirms a login
// without returning a token. They are kept but never sent for refresh.
const (
	PlaceholderTokenPrefix        = "mock-token-"
	PlaceholderRefreshTokenPrefix = "mock-refresh-token-"
)

// UserStatus is the account status of a signed-in user.
type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserPending   UserStatus = "PENDING"
)

// Valid reports whether s is one of the known user statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended, UserPending:
		return true
	}
	return false
}

// DepartmentRef is the short department reference embedded in users and employees.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is a single grant attached to a role.
type Permission struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`
}

// Role is a named set of permissions.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is the persisted identity of the signed-in account.
type User struct {
	ID          string        `json:"id"`
	EmployeeID  string        `json:"employeeId"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FullName    string        `json:"fullName"`
	PhoneNumber string        `json:"phoneNumber"`
	Avatar      string        `json:"avatar,omitempty"`
	Department  DepartmentRef `json:"department"`
	Position    string        `json:"position,omitempty"`
	Role        string        `json:"role"`
	Status      UserStatus    `json:"status"`
	Roles       []Role        `json:"roles"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
	LastLoginAt string        `json:"lastLoginAt,omitempty"`
}

// AuthData is the canonical payload of a successful login or registration.
type AuthData struct {
	ID                    string `json:"id"`
	EmployeeID            string `json:"employeeId"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	FullName              string `json:"fullName"`
	Role                  string `json:"role"`
	DepartmentName        string `json:"departmentName"`
	DepartmentDisplayName string `json:"departmentDisplayName"`
	Message               string `json:"message,omitempty"`
	Token                 string `json:"token"`
	RefreshToken          string `json:"refreshToken,omitempty"`
}

// AuthResult is a normalized auth response.
type AuthResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    AuthData `json:"data"`
}

// User derives the session user from the auth payload.
func (r *AuthResult) User(now string) User {
	d := r.Data
	role := d.Role
	if role == "" {
		role = DefaultRole
	}
	dept := d.DepartmentDisplayName
	if dept == "" {
		dept = d.DepartmentName
	}
	if dept == "" {
		dept = UnknownDepartmentName
	}
	id := d.ID
	if id == "" {
		id = "1"
	}
	employeeID := d.EmployeeID
	if employeeID == "" {
		employeeID = "1"
	}
	return User{
		ID:         id,
		EmployeeID: employeeID,
		Username:   d.Username,
		Email:      d.Email,
		FullName:   d.FullName,
		Department: DepartmentRef{ID: "1", Name: dept},
		Role:       role,
		Status:     UserActive,
		Roles:      []Role{{ID: "1", Name: role}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TokenPair is the body of a successful refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Credentials are the login inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the input of a self-service sign up.
type Registration struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	DepartmentName string `json:"departmentName"`
}

// PasswordReset completes a forgot-password flow.
type PasswordReset struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordChange changes the password of the signed-in user.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are left unchanged.
type ProfileUpdate struct {
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}
