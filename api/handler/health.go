package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/staff-portal/api/transport"
	"github.com/fastygo/staff-portal/internal/infrastructure/monitor"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
)

// StatusSource reports dependency health.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":   time.Now().UTC(),
		"services":    status.Components,
		"buffer_size": status.BufferSize,
		"last_check":  status.LastCheck,
	}

	if status.Online {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
