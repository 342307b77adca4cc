package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/eshaffer321/tuition-reconciler/internal/adapters/ocr"
	"github.com/eshaffer321/tuition-reconciler/internal/api/dto"
	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// maxImageBytes bounds receipt uploads.
const maxImageBytes = 10 << 20

// ReconcileHandler handles reconciliation requests.
type ReconcileHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(repo storage.Repository, svc *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{
		Base: NewBase(repo),
		svc:  svc,
	}
}

// Text handles POST /api/reconcile - reconciles pasted text against the roster.
func (h *ReconcileHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	run, err := h.svc.Reconcile(r.Context(), service.Request{
		Source: storage.SourceText,
		Text:   req.Text,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.WriteServiceError(w, err, "run")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewRunResponse(run))
}

// Image handles POST /api/reconcile/image - multipart upload in field "image_file".
func (h *ReconcileHandler) Image(w http.ResponseWriter, r *http.Request) {
	if !h.svc.HasExtractor() {
		h.WriteServiceError(w, service.ErrNoExtractor, "run")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("image_file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("image_file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("failed to read image_file"))
		return
	}

	run, err := h.svc.ReconcileImage(r.Context(), ocr.Image{Name: header.Filename, Data: data})
	switch {
	case errors.Is(err, ocr.ErrEmptyImage):
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("image_file is empty"))
		return
	case errors.Is(err, service.ErrExtraction):
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	case err != nil:
		h.WriteServiceError(w, err, "run")
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewRunResponse(run))
}

// Batch handles POST /api/reconcile/batch - reconciles several texts concurrently.
func (h *ReconcileHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchReconcileRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	if len(req.Texts) > dto.MaxBatchTexts {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(fmt.Sprintf("at most %d texts per batch", dto.MaxBatchTexts)))
		return
	}

	items, err := h.svc.ReconcileBatch(r.Context(), req.Texts)
	if err != nil {
		h.WriteServiceError(w, err, "run")
		return
	}

	response := dto.BatchResponse{
		Items: make([]dto.BatchItemResponse, len(items)),
		Count: len(items),
	}
	for i, item := range items {
		response.Items[i].Index = i
		if item.Err != nil {
			response.Items[i].Error = item.Err.Error()
			continue
		}
		run := dto.NewRunResponse(item.Run)
		response.Items[i].Run = &run
	}
	h.WriteJSON(w, http.StatusOK, response)
}
