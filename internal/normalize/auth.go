package normalize

import (
	"strconv"
	"strings"

	"github.com/attendflow/attendflow/internal/domain"
)

// AuthShape identifies which known auth response layout a payload uses.
type AuthShape int

const (
	AuthUnknown AuthShape = iota
	// AuthFlat: {token, employeeId, username, ...} at the top level.
	AuthFlat
	// AuthWrapped: {success, message, data:{...}}, already canonical.
	AuthWrapped
	// AuthTokenUser: {token, user|employee}.
	AuthTokenUser
	// AuthAccessTokenUser: {accessToken, user|employee}.
	AuthAccessTokenUser
	// AuthSuccessMessage: a success message with a token under any alias.
	AuthSuccessMessage
	// AuthMessageOnly: a success message and no token at all.
	AuthMessageOnly
)

func (s AuthShape) String() string {
	switch s {
	case AuthFlat:
		return "flat"
	case AuthWrapped:
		return "wrapped"
	case AuthTokenUser:
		return "token+user"
	case AuthAccessTokenUser:
		return "accessToken+user"
	case AuthSuccessMessage:
		return "success-message"
	case AuthMessageOnly:
		return "message-only"
	}
	return "unknown"
}

const defaultLoginMessage = "Login successful"

var authExpected = []string{"token", "employeeId", "fullName", "email", "username", "role"}

// ClassifyAuth returns the shape an auth payload is parsed as.
func ClassifyAuth(raw any) AuthShape {
	v, err := toValue(raw)
	if err != nil {
		return AuthUnknown
	}
	o, ok := asObject(v)
	if !ok {
		return AuthUnknown
	}
	if shape := classifyAuth(o); shape != AuthUnknown {
		return shape
	}
	return fallbackShape(o)
}

func classifyAuth(o object) AuthShape {
	hasUser := o.truthy("user") || o.truthy("employee")
	switch {
	case o.truthy("token") && o.has("employeeId"):
		return AuthFlat
	case o.has("success") && o.truthy("data"):
		return AuthWrapped
	case o.truthy("token") && hasUser:
		return AuthTokenUser
	case o.truthy("accessToken") && hasUser:
		return AuthAccessTokenUser
	}
	return AuthUnknown
}

// Auth normalizes a login or registration response using the zero Normalizer.
func Auth(raw any) (*domain.AuthResult, error) {
	return (*Normalizer)(nil).Auth(raw)
}

// Auth normalizes a login or registration response. Normalizing its own
// output yields an equal result.
func (n *Normalizer) Auth(raw any) (*domain.AuthResult, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(v)
	if !ok {
		return nil, formatError("auth", "not an object", authExpected, v)
	}

	switch classifyAuth(o) {
	case AuthFlat:
		return &domain.AuthResult{
			Success: true,
			Message: orDefault(o.str("message"), defaultLoginMessage),
			Data:    authData(o),
		}, nil

	case AuthWrapped:
		data, _ := o.obj("data")
		d := authData(data)
		if d.RefreshToken == "" {
			d.RefreshToken = o.str("refreshToken")
		}
		return &domain.AuthResult{
			Success: truthy(o["success"]),
			Message: o.str("message"),
			Data:    d,
		}, nil

	case AuthTokenUser:
		return n.tokenUser(o, o.str("token")), nil

	case AuthAccessTokenUser:
		return n.tokenUser(o, o.str("accessToken")), nil
	}

	return n.authFallback(o)
}

func authData(o object) domain.AuthData {
	return domain.AuthData{
		ID:                    o.str("id"),
		EmployeeID:            o.str("employeeId"),
		Username:              o.str("username"),
		Email:                 o.str("email"),
		FullName:              o.str("fullName"),
		Role:                  orDefault(o.str("role"), domain.DefaultRole),
		DepartmentName:        o.str("departmentName"),
		DepartmentDisplayName: o.str("departmentDisplayName"),
		Message:               o.str("message"),
		Token:                 o.str("token"),
		RefreshToken:          o.str("refreshToken"),
	}
}

func (n *Normalizer) tokenUser(o object, token string) *domain.AuthResult {
	u := n.responseUser(o)
	d := authDataFromUser(u, token)
	d.RefreshToken = o.str("refreshToken")
	return &domain.AuthResult{
		Success: true,
		Message: orDefault(o.str("message"), defaultLoginMessage),
		Data:    d,
	}
}

// responseUser prefers an embedded user, then an embedded employee,
// then the unknown user.
func (n *Normalizer) responseUser(o object) domain.User {
	if u, ok := o.obj("user"); ok {
		return n.userFrom(u)
	}
	e, _ := o.obj("employee")
	return n.userFrom(e)
}

func authDataFromUser(u domain.User, token string) domain.AuthData {
	return domain.AuthData{
		ID:                    orDefault(numericID(u.ID), "1"),
		EmployeeID:            orDefault(numericID(orDefault(u.EmployeeID, u.ID)), "1"),
		Username:              u.Username,
		Email:                 u.Email,
		FullName:              u.FullName,
		Role:                  orDefault(u.Role, domain.DefaultRole),
		DepartmentName:        u.Department.Name,
		DepartmentDisplayName: u.Department.Name,
		Token:                 token,
	}
}

// numericID keeps the leading integer of ids like "7", "7.0" or "7e3". Ids
// without one, or too large for int64, are returned unchanged.
func numericID(s string) string {
	t := strings.TrimSpace(s)
	end := 0
	if end < len(t) && (t[end] == '-' || t[end] == '+') {
		end++
	}
	digits := end
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == digits {
		return s
	}
	n, err := strconv.ParseInt(t[:end], 10, 64)
	if err != nil {
		return s
	}
	return strconv.FormatInt(n, 10)
}

var tokenAliases = []string{"token", "accessToken", "jwt", "authToken"}

// fallbackShape scans payloads that match no structural shape.
func fallbackShape(o object) AuthShape {
	message := o.str("message")
	if strings.Contains(strings.ToLower(message), "success") && o.str(tokenAliases...) != "" {
		return AuthSuccessMessage
	}
	if strings.Contains(message, "thành công") || strings.Contains(message, "successful") {
		return AuthMessageOnly
	}
	return AuthUnknown
}

// authFallback handles the loosely shaped payloads. A bare success message
// gets a placeholder token so the session can still be stored.
func (n *Normalizer) authFallback(o object) (*domain.AuthResult, error) {
	message := o.str("message")

	switch fallbackShape(o) {
	case AuthSuccessMessage:
		d := authDataFromUser(n.responseUser(o), o.str(tokenAliases...))
		d.RefreshToken = o.str("refreshToken")
		return &domain.AuthResult{Success: true, Message: message, Data: d}, nil

	case AuthMessageOnly:
		token := domain.PlaceholderTokenPrefix + strconv.FormatInt(n.now().UnixMilli(), 10)
		return &domain.AuthResult{
			Success: true,
			Message: message,
			Data:    authDataFromUser(n.responseUser(o), token),
		}, nil
	}

	return nil, formatError("auth", "", authExpected, map[string]any(o))
}

// TokenPair extracts the {success, data:{token, refreshToken, expiresIn}}
// body of a refresh response.
func TokenPair(raw any) (*domain.TokenPair, error) {
	v, err := toValue(raw)
	if err != nil {
		return nil, err
	}
	o, ok := asObject(v)
	if !ok || !o.truthy("success") {
		return nil, domain.ErrInvalidRefreshResponse
	}
	data, ok := o.obj("data")
	if !ok || data.str("token") == "" {
		return nil, domain.ErrInvalidRefreshResponse
	}
	expiresIn, _ := data.num("expiresIn")
	return &domain.TokenPair{
		Token:        data.str("token"),
		RefreshToken: data.str("refreshToken"),
		ExpiresIn:    int64(expiresIn),
	}, nil
}

// User normalizes a profile payload, wrapped in data or bare.
func (n *Normalizer) User(raw any) (domain.User, error) {
	v, err := toValue(raw)
	if err != nil {
		return domain.User{}, err
	}
	o, ok := asObject(v)
	if !ok {
		return domain.User{}, formatError("user", "not an object", []string{"id", "username"}, v)
	}
	if data, ok := o.obj("data"); ok {
		o = data
	}
	return n.userFrom(o), nil
}

// Ack reads the success flag and message of a simple acknowledgement.
// A payload without a success flag counts as successful.
func Ack(raw any) (bool, string) {
	v, err := toValue(raw)
	if err != nil {
		return false, ""
	}
	o, ok := asObject(v)
	if !ok {
		return true, ""
	}
	if !o.has("success") {
		return true, o.str("message")
	}
	return truthy(o["success"]), o.str("message")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
