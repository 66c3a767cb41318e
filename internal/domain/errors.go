package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors are returned by the services and inspected by the session
// manager and the CLI. Display text is produced by the i18n package.
// -----------------------------------------------------------------------------

// Session errors
var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrNoRefreshToken          = errors.New("no refresh token available")
	ErrPlaceholderRefreshToken = errors.New("placeholder refresh token cannot be refreshed")
	ErrInvalidRefreshResponse  = errors.New("refresh token response invalid")
	ErrTokenExpired            = errors.New("token expired")
)

// Request errors
var (
	ErrInvalidReportFilter = errors.New("invalid filter combination: provide employeeId with dates, employeeId only, or dates only")
	ErrMissingID           = errors.New("id is required")
	ErrInvalidViewMode     = errors.New("view mode must be grid or table")
	ErrPasswordMismatch    = errors.New("new password and confirmation do not match")
)

// Response errors
var (
	ErrRequestRejected = errors.New("request rejected by server")
)
