package handlers

import (
	"net/http"

	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/logx"
)

// AdminHandler serves the /admin endpoints.
type AdminHandler struct {
	uc     StatsUsecase
	logger logx.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(logger logx.Logger, uc StatsUsecase) *AdminHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AdminHandler{uc: uc, logger: logger}
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	st, err := h.uc.Stats(r.Context(), caller)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, statsToResponse(st))
}
