package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eshaffer321/tuition-reconciler/internal/api/dto"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// PaymentsHandler handles payment HTTP requests.
type PaymentsHandler struct {
	*Base
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(repo storage.Repository) *PaymentsHandler {
	return &PaymentsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/payments - filters: student_id, status, since, limit.
func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.PaymentFilter{
		Status: storage.PaymentStatus(q.Get("status")),
		Limit:  ParseIntParam(r, "limit", 100),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid status"))
		return
	}
	if v := q.Get("student_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid student_id"))
			return
		}
		filter.StudentID = id
	}
	since, err := ParseDate(q.Get("since"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	filter.Since = since

	payments, err := h.repo.ListPayments(filter)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if payments == nil {
		payments = []*storage.Payment{}
	}

	h.WriteJSON(w, http.StatusOK, dto.PaymentListResponse{
		Payments: payments,
		Count:    len(payments),
	})
}

// Create handles POST /api/payments - records a payment by hand.
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	status := storage.PaymentStatus(req.Status)
	if status == "" {
		status = storage.PaymentPaid
	}
	if !status.Valid() {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("status must be UNPAID, PAID or MISMATCH"))
		return
	}
	if req.AmountPaid < 0 {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("amount_paid must not be negative"))
		return
	}
	date, err := ParseDate(req.PaymentDate)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	payment := &storage.Payment{
		StudentID:     req.StudentID,
		AmountPaid:    req.AmountPaid,
		PaymentDate:   date,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
	}
	if err := h.repo.SavePayment(payment); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError("unknown student"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	h.WriteJSON(w, http.StatusCreated, payment)
}
