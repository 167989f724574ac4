package domain

import "strings"

// Role identifies which dashboards a staff member may open.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleCFO      Role = "cfo"
	RoleCMO      Role = "cmo"
	RoleCOO      Role = "coo"
	RoleCEO      Role = "ceo"
)

// Roles lists every role in the order the login form offers them.
var Roles = []Role{RoleEmployee, RoleManager, RoleHR, RoleCFO, RoleCMO, RoleCOO, RoleCEO}

// ParseRole accepts the role strings used by the login form.
func ParseRole(value string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(value)))
	for _, r := range Roles {
		if r == candidate {
			return r, true
		}
	}
	return "", false
}

// IsExecutive reports whether the role skips profile setup.
func (r Role) IsExecutive() bool {
	switch r {
	case RoleCFO, RoleCMO, RoleCOO, RoleCEO:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Departments is the closed list offered to non-executive roles.
var Departments = []string{
	"Engineering",
	"Marketing",
	"Sales",
	"Finance",
	"Human Resources",
	"Operations",
	"Customer Support",
	"Legal",
}

// CanonicalDepartment returns the listed spelling of a department, matched case-insensitively.
func CanonicalDepartment(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, d := range Departments {
		if strings.EqualFold(d, value) {
			return d, true
		}
	}
	return "", false
}
