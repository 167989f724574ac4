package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/staff-portal/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

const requestIDHeader = "X-Request-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
// The request ID is reused across middleware and handlers of the same request.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RequestID returns the request ID of ctx, assigning one (and echoing it in the response) on first use.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if existing := string(ctx.Response.Header.Peek(requestIDHeader)); existing != "" {
		return existing
	}
	reqID := string(ctx.Request.Header.Peek(requestIDHeader))
	if strings.TrimSpace(reqID) == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set(requestIDHeader, reqID)
	return reqID
}

// WantsJSON reports whether the client asked for JSON and not HTML. Browsers send text/html
// or */* and get redirects instead of error envelopes.
func WantsJSON(ctx *fasthttp.RequestCtx) bool {
	accept := strings.ToLower(string(ctx.Request.Header.Peek(fasthttp.HeaderAccept)))
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
