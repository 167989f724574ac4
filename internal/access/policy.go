package access

import (
	"fmt"

	"github.com/fastygo/staff-portal/domain"
)

// Policy answers the per-page gate question for a session.
type Policy struct {
	pages map[string]Page
	order []string
}

// NewPolicy indexes pages by slug. Later pages with the same slug replace earlier ones.
func NewPolicy(pages []Page) *Policy {
	p := &Policy{pages: make(map[string]Page, len(pages))}
	for _, page := range pages {
		if _, exists := p.pages[page.Slug]; !exists {
			p.order = append(p.order, page.Slug)
		}
		p.pages[page.Slug] = page
	}
	return p
}

// Page returns the page declared for slug.
func (p *Policy) Page(slug string) (Page, bool) {
	page, ok := p.pages[slug]
	return page, ok
}

// Pages lists pages in declaration order.
func (p *Policy) Pages() []Page {
	out := make([]Page, 0, len(p.order))
	for _, slug := range p.order {
		out = append(out, p.pages[slug])
	}
	return out
}

// Check returns nil when session may open the page. An absent or partial session yields
// UNAUTHORIZED, a valid session whose role is not on the allow-list yields FORBIDDEN and an
// unknown page NOT_FOUND.
func (p *Policy) Check(slug string, session *domain.Session) error {
	page, ok := p.pages[slug]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrPageNotFound, slug)
	}
	if !session.Valid() {
		return domain.ErrUnauthorized
	}
	if !page.Accepts(session.Role) {
		return domain.ErrForbidden
	}
	return nil
}

// Restricted reports whether the page should render its reduced variant, either because the
// session skipped profile setup or because the request carries the restricted flag.
func Restricted(session *domain.Session, flag bool) bool {
	if session == nil || session.Role.IsExecutive() {
		return false
	}
	return flag || session.IsRestricted()
}
