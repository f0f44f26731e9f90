package response

import (
	"errors"
	"net/http"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/employee"
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrLocationMissing):
		BadRequest(w, "Location coordinates are required", nil)
	case errors.Is(err, attendance.ErrInvalidPunchSequence):
		BadRequest(w, "Punch does not alternate with the previous punch", nil)
	case errors.Is(err, attendance.ErrOutsideAllowedWindow):
		BadRequest(w, "Punch time is outside the allowed window", nil)
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, "Not allowed for this employee")
	case errors.Is(err, attendance.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Role errors
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin access required")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
