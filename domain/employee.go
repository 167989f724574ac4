package domain

import "time"

// Employee is the directory entry written when a staff member completes profile setup.
type Employee struct {
	ID              string            `json:"id"`
	Role            Role              `json:"role"`
	Department      string            `json:"department,omitempty"`
	Manager         string            `json:"manager,omitempty"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone,omitempty"`
	ProfileComplete bool              `json:"profile_complete"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
