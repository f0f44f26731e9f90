package employee

import "time"

// Employee mirrors the directory collaborator's roster entry. The attendance
// core only needs identity, department and designation for display and
// scoping; everything else stays in the directory.
type Employee struct {
	ID          string
	UserID      *string
	FullName    string
	Department  string
	Designation string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
