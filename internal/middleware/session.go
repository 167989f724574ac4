// Package middleware holds the session gate every protected route goes through.
package middleware

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/api/transport"
	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
	"github.com/fastygo/staff-portal/pkg/logger"
)

const sessionKey = "portal.session"

// SessionResolver turns a session id into an admitted session.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SlugFunc names the page a request targets. An empty slug admits any valid session.
type SlugFunc func(ctx *fasthttp.RequestCtx) string

// PageParam reads the slug from a router parameter.
func PageParam(name string) SlugFunc {
	return func(ctx *fasthttp.RequestCtx) string {
		if v, ok := ctx.UserValue(name).(string); ok {
			return v
		}
		return ""
	}
}

// Gate runs the per-request session check.
type Gate struct {
	sessions SessionResolver
	policy   *access.Policy
	cookies  *SessionCookies
	adapter  *httpcontext.Adapter
	logger   *zap.Logger
}

func NewGate(sessions SessionResolver, policy *access.Policy, cookies *SessionCookies, adapter *httpcontext.Adapter, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{sessions: sessions, policy: policy, cookies: cookies, adapter: adapter, logger: log}
}

// Protect admits the request when its session may open the page named by slug. Otherwise
// browsers are redirected to the login route and JSON clients get a 401 or 403 envelope.
func (g *Gate) Protect(slug SlugFunc, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		stdCtx, cancel := g.requestContext(ctx)
		defer cancel()
		log := logger.WithRequestID(stdCtx, g.logger)

		page := ""
		if slug != nil {
			page = slug(ctx)
		}

		session, err := g.sessions.Resolve(stdCtx, g.cookies.SessionID(ctx))
		if err == nil && page != "" {
			err = g.policy.Check(page, session)
		}
		if err != nil {
			g.deny(ctx, log, page, session, err)
			return
		}

		ctx.SetUserValue(sessionKey, session)
		next(ctx)
	}
}

// SessionFrom returns the session admitted by the gate.
func SessionFrom(ctx *fasthttp.RequestCtx) (*domain.Session, bool) {
	s, ok := ctx.UserValue(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

func (g *Gate) deny(ctx *fasthttp.RequestCtx, log *zap.Logger, page string, session *domain.Session, err error) {
	fields := []zap.Field{
		zap.String("path", string(ctx.Path())),
		zap.String("page", page),
	}
	if session != nil {
		fields = append(fields, zap.String("role", session.Role.String()))
	}

	status, code := http.StatusUnauthorized, domain.ErrCodeUnauthorized
	switch {
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		status, code = http.StatusForbidden, domain.ErrCodeForbidden
		log.Warn("page denied for role", fields...)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		status, code = http.StatusNotFound, domain.ErrCodeNotFound
		log.Debug("unknown page", fields...)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		log.Debug("no valid session", fields...)
	default:
		log.Error("session lookup failed", append(fields, zap.Error(err))...)
		status, code = http.StatusInternalServerError, domain.ErrCodeInternal
	}

	if httpcontext.WantsJSON(ctx) || code == domain.ErrCodeNotFound || code == domain.ErrCodeInternal {
		respondEnvelope(ctx, status, transport.NewError(string(code), domain.MessageOf(err, string(code)), nil))
		return
	}
	ctx.Response.Header.Set(fasthttp.HeaderLocation, access.LoginPath)
	ctx.SetStatusCode(fasthttp.StatusFound)
}

func (g *Gate) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if g.adapter != nil {
		return g.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func respondEnvelope(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody([]byte(payload.String()))
}
