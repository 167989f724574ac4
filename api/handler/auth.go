package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fastygo/staff-portal/api/transport"
	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/middleware"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
	authUC "github.com/fastygo/staff-portal/usecase/auth"
)

// AuthHandler serves the login, profile-setup and logout routes.
type AuthHandler struct {
	baseHandler
	uc      *authUC.UseCase
	cookies *middleware.SessionCookies
}

func NewAuthHandler(uc *authUC.UseCase, cookies *middleware.SessionCookies, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookies:     cookies,
	}
}

// @Summary Describe the login form
// @Tags auth
// @Router /login [get]
func (h *AuthHandler) LoginForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	form := transport.LoginForm{
		Roles:        roleOptions(),
		Departments:  domain.Departments,
		PINMaxLength: authUC.MaxPINLength,
		ProfileSetup: access.ProfileSetupPath,
		Error:        string(ctx.QueryArgs().Peek("error")),
	}
	if _, err := h.uc.Pending(stdCtx, h.cookies.SessionID(ctx)); err == nil {
		form.PendingSession = true
	}
	h.respondSuccess(ctx, http.StatusOK, form)
}

// @Summary Submit the login form
// @Tags auth
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := decodeBody(ctx, &req, func(get func(string) string) {
		req = transport.LoginRequest{
			EmployeeID: get("employee_id"),
			PIN:        get("pin"),
			Role:       get("role"),
			Department: get("department"),
			Manager:    get("manager"),
		}
	}); err != nil {
		h.respondFailure(ctx, err, access.LoginPath)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.Login(stdCtx, authUC.LoginInput{
		EmployeeID: req.EmployeeID,
		PIN:        req.PIN,
		Role:       req.Role,
		Department: req.Department,
		Manager:    req.Manager,
		Replaces:   h.cookies.SessionID(ctx),
	})
	if err != nil {
		h.respondFailure(ctx, err, access.LoginPath)
		return
	}
	h.respondFlow(ctx, res)
}

// @Summary Show the pending profile-setup step
// @Tags auth
// @Router /profile-setup [get]
func (h *AuthHandler) ProfileSetupForm(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.uc.Pending(stdCtx, h.cookies.SessionID(ctx))
	if err != nil {
		if httpcontext.WantsJSON(ctx) {
			h.respondError(ctx, err)
			return
		}
		h.redirect(ctx, access.LoginPath)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"employee_id": session.EmployeeID,
		"role":        session.Role,
		"department":  session.Department,
		"manager":     session.Manager,
		"error":       string(ctx.QueryArgs().Peek("error")),
	})
}

// @Summary Complete profile setup
// @Tags auth
// @Router /profile-setup [post]
func (h *AuthHandler) CompleteProfile(ctx *fasthttp.RequestCtx) {
	var req transport.ProfileSetupRequest
	if err := decodeBody(ctx, &req, func(get func(string) string) {
		req = transport.ProfileSetupRequest{
			FullName: get("full_name"),
			Email:    get("email"),
			Phone:    get("phone"),
		}
	}); err != nil {
		h.respondFailure(ctx, err, access.ProfileSetupPath)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.CompleteProfile(stdCtx, h.cookies.SessionID(ctx), authUC.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondFailure(ctx, err, access.ProfileSetupPath)
		return
	}
	h.respondFlow(ctx, res)
}

// @Summary Skip profile setup
// @Tags auth
// @Router /profile-setup/skip [post]
func (h *AuthHandler) SkipProfile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res, err := h.uc.SkipProfile(stdCtx, h.cookies.SessionID(ctx))
	if err != nil {
		h.respondFailure(ctx, err, access.ProfileSetupPath)
		return
	}
	h.respondFlow(ctx, res)
}

// @Summary Log out
// @Tags auth
// @Router /logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, h.cookies.SessionID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.cookies.Clear(ctx)
	if httpcontext.WantsJSON(ctx) {
		h.respondSuccess(ctx, http.StatusOK, transport.FlowResponse{Next: access.LoginPath})
		return
	}
	h.redirect(ctx, access.LoginPath)
}

func (h *AuthHandler) respondFlow(ctx *fasthttp.RequestCtx, res *authUC.Result) {
	signed, err := h.cookies.Issue(ctx, res.Session.ID)
	if err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "failed to issue session token", err))
		return
	}
	if isFormPost(ctx) {
		h.redirect(ctx, res.Next)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.FlowResponse{
		Next:       res.Next,
		State:      string(res.Session.State),
		Role:       res.Session.Role.String(),
		EmployeeID: res.Session.EmployeeID,
		Restricted: res.Session.IsRestricted(),
		Token:      signed,
	})
}

func roleOptions() []transport.RoleOption {
	upper := cases.Upper(language.English)
	title := cases.Title(language.English)
	options := make([]transport.RoleOption, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		label := title.String(role.String())
		if len(role) <= 3 {
			label = upper.String(role.String())
		}
		options = append(options, transport.RoleOption{
			Value:     role.String(),
			Label:     label,
			Executive: role.IsExecutive(),
		})
	}
	return options
}
