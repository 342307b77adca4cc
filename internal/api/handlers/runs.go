package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/tuition-reconciler/internal/api/dto"
	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run history requests.
type RunsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository, svc *service.ReconcileService) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
		svc:  svc,
	}
}

// List handles GET /api/runs - returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)
	offset := ParseIntParam(r, "offset", 0)
	if limit < 1 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := h.repo.ListRuns(limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}

	h.WriteJSON(w, http.StatusOK, dto.RunListResponse{
		Runs:   runs,
		Count:  len(runs),
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/runs/{id} - returns a run with its outcomes.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.repo.GetRun(id)
	if err != nil {
		h.WriteServiceError(w, err, "run")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewRunResponse(run))
}

// Confirm handles POST /api/runs/{id}/outcomes/{seq}/confirm - records the
// payments a match outcome stands for. The body is optional.
func (h *RunsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 0 {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid outcome seq"))
		return
	}

	var req dto.ConfirmRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(w, r, &req); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
			return
		}
	}
	date, err := ParseDate(req.PaymentDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	payments, err := h.svc.ConfirmOutcome(id, seq, service.ConfirmRequest{
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   date,
	})
	if err != nil {
		h.WriteServiceError(w, err, "outcome")
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.ConfirmResponse{
		RunID:    id,
		Seq:      seq,
		Payments: payments,
	})
}
