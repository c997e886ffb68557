package constants

import "time"

// Session
const (
	SessionCookieName      = "lab_session"
	ContextKeyAdminID      = "admin_id"
	ContextKeyLabID        = "lab_id"
	ContextKeyRole         = "role"
	ContextKeyPrincipal    = "principal"
	ContextKeyLab          = "lab"
)

// Roles carried in the session and on member rows
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleMember     = "member"
)

// OTP
const (
	OtpCodeLength = 6
	OtpTTL        = 5 * time.Minute

	OtpPurposeLabSignup     = "lab_signup"
	OtpPurposeCreateBranch  = "create_branch"
	OtpPurposePasswordReset = "password_reset"
)

// Validation
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
