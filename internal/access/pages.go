// Package access declares which roles may open which portal page and where each role lands
// after login. Every protected route goes through Policy.Check instead of repeating the check.
package access

import (
	"github.com/fastygo/staff-portal/domain"
)

const (
	LoginPath        = "/login"
	ProfileSetupPath = "/profile-setup"
	PortalPrefix     = "/portal/"
	DefaultSlug      = "dashboard"
	RestrictedParam  = "restricted"
)

// Page is one protected portal page.
type Page struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Roles    []domain.Role `json:"roles"`
	Sections []string      `json:"sections"`
	// Limited sections are withheld from restricted sessions.
	Limited []string `json:"limited,omitempty"`
}

// Accepts reports whether role is on the page's allow-list.
func (p Page) Accepts(role domain.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsLimited reports whether a section is hidden from restricted sessions.
func (p Page) IsLimited(section string) bool {
	for _, s := range p.Limited {
		if s == section {
			return true
		}
	}
	return false
}

// Path returns the route of the page.
func (p Page) Path() string {
	return PortalPrefix + p.Slug
}

// DefaultPages is the portal's page table.
var DefaultPages = []Page{
	{
		Slug:     "ceo-dashboard",
		Title:    "CEO Dashboard",
		Roles:    []domain.Role{domain.RoleCEO},
		Sections: []string{"reports", "budgets", "investments", "calendar"},
	},
	{
		Slug:     "cfo-dashboard",
		Title:    "CFO Dashboard",
		Roles:    []domain.Role{domain.RoleCFO},
		Sections: []string{"budgets", "investments", "contracts", "compliance"},
	},
	{
		Slug:     "cmo-dashboard",
		Title:    "CMO Dashboard",
		Roles:    []domain.Role{domain.RoleCMO},
		Sections: []string{"campaigns", "budgets", "reports"},
	},
	{
		Slug:     "coo-dashboard",
		Title:    "COO Dashboard",
		Roles:    []domain.Role{domain.RoleCOO},
		Sections: []string{"facilities", "quality", "suppliers", "contracts"},
	},
	{
		Slug:     "hr-dashboard",
		Title:    "HR Dashboard",
		Roles:    []domain.Role{domain.RoleHR},
		Sections: []string{"team", "benefits", "compliance", "calendar"},
		Limited:  []string{"team", "compliance"},
	},
	{
		Slug:     "manager-dashboard",
		Title:    "Manager Dashboard",
		Roles:    []domain.Role{domain.RoleManager},
		Sections: []string{"team", "reports", "calendar"},
		Limited:  []string{"team", "reports"},
	},
	{
		Slug:     "employee-dashboard",
		Title:    "Employee Dashboard",
		Roles:    []domain.Role{domain.RoleEmployee},
		Sections: []string{"calendar", "benefits"},
		Limited:  []string{"benefits"},
	},
	{
		Slug:     "facilities",
		Title:    "Facilities Management",
		Roles:    []domain.Role{domain.RoleCOO, domain.RoleCEO},
		Sections: []string{"facilities"},
	},
	{
		Slug:     "quality",
		Title:    "Quality Control",
		Roles:    []domain.Role{domain.RoleCOO, domain.RoleCEO},
		Sections: []string{"quality"},
	},
	{
		Slug:     "supply-chain",
		Title:    "Supply Chain",
		Roles:    []domain.Role{domain.RoleCOO, domain.RoleCEO},
		Sections: []string{"suppliers"},
	},
	{
		Slug:     "compliance",
		Title:    "Compliance",
		Roles:    []domain.Role{domain.RoleCFO, domain.RoleHR, domain.RoleCEO},
		Sections: []string{"compliance"},
		Limited:  []string{"compliance"},
	},
	{
		Slug:     DefaultSlug,
		Title:    "Staff Dashboard",
		Roles:    domain.Roles,
		Sections: []string{"calendar"},
	},
}

// landing maps each role to its dashboard; anything else lands on DefaultSlug.
var landing = map[domain.Role]string{
	domain.RoleCEO:      "ceo-dashboard",
	domain.RoleCFO:      "cfo-dashboard",
	domain.RoleCMO:      "cmo-dashboard",
	domain.RoleCOO:      "coo-dashboard",
	domain.RoleHR:       "hr-dashboard",
	domain.RoleManager:  "manager-dashboard",
	domain.RoleEmployee: "employee-dashboard",
}

// LandingPath returns the dashboard route for a role.
func LandingPath(role domain.Role) string {
	if slug, ok := landing[role]; ok {
		return PortalPrefix + slug
	}
	return PortalPrefix + DefaultSlug
}

// RestrictedLandingPath is LandingPath with the restricted navigation flag appended.
func RestrictedLandingPath(role domain.Role) string {
	return LandingPath(role) + "?" + RestrictedParam + "=true"
}
