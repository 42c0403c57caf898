package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailNotConfirmed  = errors.New("email is not confirmed")
	ErrCodeExpired        = errors.New("confirmation code has expired")
	ErrAdminProtected     = errors.New("the admin account cannot be modified this way")
	ErrUnauthorized       = errors.New("unauthorized")
	// ErrEmailDelivery marks a failure of the outbound email transport,
	// distinct from any internal fault.
	ErrEmailDelivery = errors.New("could not reach the email service")
	ErrInternal      = errors.New("internal error")
)

// ValidationError carries the full enumerable list of user-fixable reasons
// an input was rejected.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}
