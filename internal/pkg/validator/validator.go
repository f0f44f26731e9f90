package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUID validation
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Latitude validation
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// Longitude validation
func IsValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}

// Month validation (1-12)
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// Year validation: reports before 2020 or past next year make no sense here.
func IsValidYear(year int) bool {
	return year >= 2020 && year <= time.Now().Year()+1
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
