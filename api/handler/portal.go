package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/middleware"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
	portalUC "github.com/fastygo/staff-portal/usecase/portal"
)

// PortalHandler serves gated dashboard pages.
type PortalHandler struct {
	baseHandler
	uc *portalUC.UseCase
}

func NewPortalHandler(uc *portalUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PortalHandler {
	return &PortalHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Render a dashboard page
// @Tags portal
// @Router /portal/{page} [get]
func (h *PortalHandler) Page(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}
	slug, _ := ctx.UserValue("page").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	view, err := h.uc.Render(stdCtx, slug, session, portalUC.PageQuery{
		Query:      string(args.Peek("q")),
		Category:   string(args.Peek("category")),
		Section:    string(args.Peek("section")),
		Restricted: args.GetBool(access.RestrictedParam),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

type sessionView struct {
	*domain.Session
	Landing string   `json:"landing"`
	Pages   []string `json:"pages"`
}

// @Summary Current session
// @Tags portal
// @Router /api/v1/session [get]
func (h *PortalHandler) Session(ctx *fasthttp.RequestCtx) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}

	landing := access.LandingPath(session.Role)
	if session.IsRestricted() {
		landing = access.RestrictedLandingPath(session.Role)
	}
	var pages []string
	for _, page := range h.uc.Policy().Pages() {
		if page.Accepts(session.Role) {
			pages = append(pages, page.Path())
		}
	}
	h.respondSuccess(ctx, http.StatusOK, sessionView{Session: session, Landing: landing, Pages: pages})
}
