package domain

import "time"

// SessionState tracks where a visitor is in the login flow.
type SessionState string

const (
	StatePending    SessionState = "pending"
	StateAdmitted   SessionState = "admitted"
	StateRestricted SessionState = "restricted"
)

// Session is the single record that replaces the staff-authenticated, staff-role and
// staff-employee-id flags plus the profile-incomplete markers. It is always written whole.
type Session struct {
	ID                string       `json:"id"`
	Authenticated     bool         `json:"authenticated"`
	Role              Role         `json:"role,omitempty"`
	EmployeeID        string       `json:"employee_id,omitempty"`
	State             SessionState `json:"state"`
	ProfileIncomplete bool         `json:"profile_incomplete,omitempty"`
	ProfileSkipTime   int64        `json:"profile_skip_time,omitempty"`
	Department        string       `json:"department,omitempty"`
	Manager           string       `json:"manager,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Valid reports whether all three session flags are present. Partial presence counts as absent.
func (s *Session) Valid() bool {
	return s != nil && s.Authenticated && s.Role != "" && s.EmployeeID != ""
}

// IsPending reports whether the visitor still owes the profile-setup step.
func (s *Session) IsPending() bool {
	return s != nil && !s.Authenticated && s.State == StatePending
}

// IsRestricted reports whether profile setup was skipped.
func (s *Session) IsRestricted() bool {
	return s.Valid() && (s.ProfileIncomplete || s.State == StateRestricted)
}

// ProfileComplete mirrors the session triple's third member. Executives always count as complete.
func (s *Session) ProfileComplete() bool {
	if s == nil {
		return false
	}
	if s.Role.IsExecutive() {
		return true
	}
	return s.Valid() && s.State == StateAdmitted && !s.ProfileIncomplete
}

// Admit turns a pending record into a full session and clears the incomplete markers.
func (s *Session) Admit(now time.Time) {
	s.Authenticated = true
	s.State = StateAdmitted
	s.ProfileIncomplete = false
	s.ProfileSkipTime = 0
	s.Touch(now)
}

// AdmitRestricted admits the visitor but records that profile setup was skipped.
func (s *Session) AdmitRestricted(now time.Time) {
	s.Authenticated = true
	s.State = StateRestricted
	s.ProfileIncomplete = true
	s.ProfileSkipTime = now.UnixMilli()
	s.Touch(now)
}

func (s *Session) Touch(now time.Time) {
	if s == nil {
		return
	}
	if now.IsZero() {
		now = time.Now()
	}
	s.UpdatedAt = now
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
}
