package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"filmorate/internal/store"
)

const healthTimeout = 2 * time.Second

// HealthHandler отвечает на /healthz, проверяя доступность хранилища.
type HealthHandler struct {
	responder
	pinger store.Pinger
}

func NewHealthHandler(p store.Pinger, l *slog.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{logger: l}, pinger: p}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Storage ping failed", slog.String("error", err.Error()))
		h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
