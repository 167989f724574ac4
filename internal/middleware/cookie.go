package middleware

import (
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/staff-portal/pkg/token"
)

// SessionCookies reads and writes the signed session cookie.
type SessionCookies struct {
	name   string
	secure bool
	signer *token.Signer
}

func NewSessionCookies(name string, secure bool, signer *token.Signer) *SessionCookies {
	if name == "" {
		name = "staff_session"
	}
	return &SessionCookies{name: name, secure: secure, signer: signer}
}

// Issue signs sessionID and sets it as a session cookie. The token is returned for API clients.
func (c *SessionCookies) Issue(ctx *fasthttp.RequestCtx, sessionID string) (string, error) {
	signed, err := c.signer.Issue(sessionID, time.Now())
	if err != nil {
		return "", err
	}
	cookie := c.base()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetValue(signed)
	ctx.Response.Header.SetCookie(cookie)
	return signed, nil
}

// Clear expires the cookie in the browser.
func (c *SessionCookies) Clear(ctx *fasthttp.RequestCtx) {
	cookie := c.base()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}

// SessionID returns the id carried by the request, or "" when there is none or it fails to
// verify. A verified Bearer token takes precedence over the cookie.
func (c *SessionCookies) SessionID(ctx *fasthttp.RequestCtx) string {
	if id := c.parse(extractToken(ctx)); id != "" {
		return id
	}
	return c.parse(string(ctx.Request.Header.Cookie(c.name)))
}

func (c *SessionCookies) parse(raw string) string {
	if raw == "" {
		return ""
	}
	id, err := c.signer.Parse(raw)
	if err != nil {
		return ""
	}
	return id
}

func (c *SessionCookies) base() *fasthttp.Cookie {
	cookie := fasthttp.AcquireCookie()
	cookie.SetKey(c.name)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(c.secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	return cookie
}

// extractToken returns the credentials of a Bearer Authorization header. Other schemes yield "".
func extractToken(ctx *fasthttp.RequestCtx) string {
	const scheme = "bearer "
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
