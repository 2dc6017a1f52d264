package handlers

import (
	"net/http"

	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/logx"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	uc     UserUsecase
	logger logx.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(logger logx.Logger, uc UserUsecase) *UserHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &UserHandler{uc: uc, logger: logger}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}
	u, err := h.uc.CurrentUser(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, userToResponse(u))
}
