package service

import (
	"errors"
	"strings"
	"time"

	"medidocs/internal/models"
	"medidocs/pkg/validator"
)

// oversightRoles may read every submission, share and audit entry without taking part in the workflow
var oversightRoles = []models.Role{models.RoleAdmin, models.RoleSuperAdmin, models.RoleCMD}

// OversightRoles lists the read-all roles
func OversightRoles() []models.Role {
	return append([]models.Role(nil), oversightRoles...)
}

func isOversightRole(role models.Role) bool {
	for _, r := range oversightRoles {
		if r == role {
			return true
		}
	}
	return false
}

// validateActor rejects an actor without identity or with an unknown role
func validateActor(actor models.Actor) error {
	if strings.TrimSpace(actor.ID) == "" {
		return newValidationError("actor", "actor id is required")
	}
	if !actor.Role.Valid() {
		return newValidationError("actor", "unknown role "+string(actor.Role))
	}
	return nil
}

// validateRequest runs struct tag validation and converts the result
func validateRequest(req interface{}) error {
	if err := validator.ValidateStruct(req); err != nil {
		var fe *validator.FieldError
		if errors.As(err, &fe) {
			return newValidationError(fe.Field, fe.Message)
		}
		return newValidationError("", err.Error())
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// laterOf keeps stamped timestamps from going backwards relative to an earlier stamp
func laterOf(t time.Time, prev *time.Time) time.Time {
	if prev != nil && t.Before(*prev) {
		return *prev
	}
	return t
}
