package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/api/transport"
	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, domain.MessageOf(err, "internal error"), nil))
}

func (h baseHandler) redirect(ctx *fasthttp.RequestCtx, location string) {
	ctx.Response.Header.Set(fasthttp.HeaderLocation, location)
	ctx.SetStatusCode(fasthttp.StatusSeeOther)
}

// respondFailure re-shows the form for browser posts and answers JSON clients with an envelope.
// Validation messages travel back to the form in the error query argument.
func (h baseHandler) respondFailure(ctx *fasthttp.RequestCtx, err error, formPath string) {
	if !isFormPost(ctx) {
		h.respondError(ctx, err)
		return
	}
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		h.redirect(ctx, formPath+"?error="+url.QueryEscape(domain.MessageOf(err, "")))
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized), domain.IsDomainError(err, domain.ErrCodeConflict):
		h.redirect(ctx, access.LoginPath)
	default:
		h.respondError(ctx, err)
	}
}

// decodeBody reads a JSON body or, for form posts, the form fields named by the JSON tags.
func decodeBody(ctx *fasthttp.RequestCtx, dst interface{}, form func(get func(string) string)) error {
	if isFormPost(ctx) {
		form(func(key string) string { return string(ctx.FormValue(key)) })
		return nil
	}
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return nil
}

func isFormPost(ctx *fasthttp.RequestCtx) bool {
	ct := strings.ToLower(string(ctx.Request.Header.ContentType()))
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
