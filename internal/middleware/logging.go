package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/pkg/httpcontext"
)

// AccessLog logs one line per request.
func AccessLog(log *zap.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx *fasthttp.RequestCtx) {
		started := time.Now()
		reqID := httpcontext.RequestID(ctx)
		next(ctx)
		log.Info("request",
			zap.String("request_id", reqID),
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("took", time.Since(started)))
	}
}
