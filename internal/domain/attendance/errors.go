package attendance

import "errors"

// Attendance domain errors
var (
	// Punch recording errors
	ErrLocationMissing      = errors.New("location coordinates are required to punch")
	ErrInvalidPunchSequence = errors.New("punch does not alternate with the previous punch")
	ErrOutsideAllowedWindow = errors.New("punch time is outside the allowed window")

	// General errors
	ErrUnauthorized     = errors.New("unauthorized to access this attendance record")
	ErrEmployeeNotFound = errors.New("employee not found")
)
