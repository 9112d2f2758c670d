package service

import (
	"errors"
	"fmt"

	"medidocs/internal/models"
)

// ErrMalformedAuditEntry is returned by the audit recorder when a caller hands it
// an entry without document, actor, action or timestamp. It signals a bug in the
// calling code and must be propagated, not logged and dropped.
var ErrMalformedAuditEntry = errors.New("malformed audit entry")

// ValidationError reports a malformed or incomplete request
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown record id
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthorizationError reports a role or identity not permitted to perform an action
type AuthorizationError struct {
	Action string
	Role   models.Role
	Reason string
}

func (e *AuthorizationError) Error() string {
	msg := fmt.Sprintf("permission denied: role %q may not %s", e.Role, e.Action)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IllegalTransitionError reports a status change not reachable from the current status,
// including a status that changed underneath the caller
type IllegalTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func newAuthorizationError(action string, role models.Role, reason string) error {
	return &AuthorizationError{Action: action, Role: role, Reason: reason}
}
