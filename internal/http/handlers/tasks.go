package handlers

import (
	"context"
	"net/http"
	"strconv"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/logx"
)

// TaskHandler serves the /tasks endpoints.
type TaskHandler struct {
	uc     TaskUsecase
	logger logx.Logger
}

// NewTaskHandler wires a TaskUsecase into HTTP handlers.
func NewTaskHandler(logger logx.Logger, uc TaskUsecase) *TaskHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &TaskHandler{uc: uc, logger: logger}
}

type taskAction func(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req createTaskRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	t, err := h.uc.CreateTask(r.Context(), caller, req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/tasks/"+strconv.FormatInt(t.ID, 10))
	writeJSON(h.logger, w, r, http.StatusCreated, taskToResponse(t))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.uc.GetTask)
}

// List handles GET /tasks. Query: status, payment_status; admins may add customer_id.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var f domain.TaskFilter
	if s := q.Get("status"); s != "" {
		st := domain.TaskStatus(s)
		f.Status = &st
	}
	if s := q.Get("payment_status"); s != "" {
		ps := domain.PaymentStatus(s)
		f.PaymentStatus = &ps
	}
	if s := q.Get("customer_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid customer_id")
			return
		}
		f.CustomerID = &id
	}

	list, err := h.uc.ListCustomerTasks(r.Context(), caller, f)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, tasksToResponse(list))
}

// Available handles GET /tasks/available.
func (h *TaskHandler) Available(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.uc.ListAvailableTasks)
}

// Assigned handles GET /tasks/assigned.
func (h *TaskHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.uc.ListAssignedTasks)
}

// Accept handles POST /tasks/{id}/accept.
func (h *TaskHandler) Accept(w http.ResponseWriter, r *http.Request) { h.act(w, r, h.uc.AcceptTask) }

// Start handles POST /tasks/{id}/start.
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) { h.act(w, r, h.uc.StartTask) }

// MarkDelivered handles POST /tasks/{id}/mark-delivered.
func (h *TaskHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.uc.MarkDelivered)
}

// Fail handles POST /tasks/{id}/fail.
func (h *TaskHandler) Fail(w http.ResponseWriter, r *http.Request) { h.act(w, r, h.uc.FailTask) }

// Confirm handles POST /tasks/{id}/confirm.
func (h *TaskHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.uc.ConfirmDelivery)
}

// Pay handles POST /tasks/{id}/pay.
func (h *TaskHandler) Pay(w http.ResponseWriter, r *http.Request) { h.act(w, r, h.uc.ChargeForTask) }

// Release handles POST /tasks/{id}/release.
func (h *TaskHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.uc.ReleasePayment)
}

// Refund handles POST /tasks/{id}/refund.
func (h *TaskHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.uc.RefundPayment)
}

func (h *TaskHandler) act(w http.ResponseWriter, r *http.Request, fn taskAction) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := fn(r.Context(), caller, id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, taskToResponse(t))
}

func (h *TaskHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, domain.Caller) ([]domain.Task, error),
) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	list, err := fn(r.Context(), caller)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, tasksToResponse(list))
}

func (h *TaskHandler) caller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	c, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthenticated")
	}
	return c, ok
}
