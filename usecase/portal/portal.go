// Package portal assembles dashboard pages from the page table and the fixture catalog.
package portal

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/catalog"
)

// PageQuery carries the list controls of a dashboard request.
type PageQuery struct {
	Query    string
	Category string
	// Section limits Query and Category to one section. Empty applies them to all sections.
	Section    string
	Restricted bool
}

type PageView struct {
	Page       string         `json:"page"`
	Title      string         `json:"title"`
	Role       domain.Role    `json:"role"`
	EmployeeID string         `json:"employee_id"`
	Restricted bool           `json:"restricted"`
	Sections   []catalog.View `json:"sections"`
	Hidden     []string       `json:"hidden,omitempty"`
}

type UseCase struct {
	policy  *access.Policy
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func New(policy *access.Policy, c *catalog.Catalog, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{policy: policy, catalog: c, logger: logger}
}

// Policy exposes the page table the use case renders from.
func (uc *UseCase) Policy() *access.Policy {
	return uc.policy
}

// Render checks the session against the page and builds its sections. Restricted sessions do
// not receive the page's limited sections.
func (uc *UseCase) Render(ctx context.Context, slug string, session *domain.Session, q PageQuery) (*PageView, error) {
	if err := uc.policy.Check(slug, session); err != nil {
		return nil, err
	}
	page, _ := uc.policy.Page(slug)

	view := &PageView{
		Page:       page.Slug,
		Title:      page.Title,
		Role:       session.Role,
		EmployeeID: session.EmployeeID,
		Restricted: access.Restricted(session, q.Restricted),
		Sections:   make([]catalog.View, 0, len(page.Sections)),
	}

	for _, name := range page.Sections {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if view.Restricted && page.IsLimited(name) {
			view.Hidden = append(view.Hidden, name)
			continue
		}
		dataset, err := uc.catalog.Get(name)
		if err != nil {
			uc.logger.Error("page references unknown dataset",
				zap.String("page", page.Slug),
				zap.String("dataset", name))
			return nil, domain.WrapError(domain.ErrCodeInternal, "page misconfigured", err)
		}
		var filter catalog.Filter
		if q.Section == "" || q.Section == name {
			filter = catalog.Filter{Query: q.Query, Category: q.Category}
		}
		view.Sections = append(view.Sections, dataset.View(filter))
	}
	return view, nil
}
