package handlers

import (
	"net/http"

	"github.com/eshaffer321/tuition-reconciler/internal/api/dto"
	"github.com/eshaffer321/tuition-reconciler/internal/application/service"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// StudentsHandler handles roster HTTP requests.
type StudentsHandler struct {
	*Base
	svc *service.ReconcileService
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(repo storage.Repository, svc *service.ReconcileService) *StudentsHandler {
	return &StudentsHandler{
		Base: NewBase(repo),
		svc:  svc,
	}
}

// List handles GET /api/students - returns the roster, optionally filtered by ?q=.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.repo.ListStudents(storage.StudentFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if students == nil {
		students = []*storage.Student{}
	}

	h.WriteJSON(w, http.StatusOK, dto.StudentListResponse{
		Students: students,
		Count:    len(students),
	})
}

// Get handles GET /api/students/{id}.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	student, err := h.repo.GetStudent(id)
	if err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}
	h.WriteJSON(w, http.StatusOK, student)
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.StudentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	student := studentFromRequest(req)
	if err := h.svc.SaveStudent(student); err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}
	h.WriteJSON(w, http.StatusCreated, student)
}

// Update handles PUT /api/students/{id}.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	var req dto.StudentRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	student := studentFromRequest(req)
	student.ID = id
	if err := h.svc.SaveStudent(student); err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}

	updated, err := h.repo.GetStudent(id)
	if err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	if err := h.repo.DeleteStudent(id); err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/students/import - bulk roster import from pasted lines.
func (h *StudentsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	students, err := h.svc.ImportRoster(req.Text)
	if err != nil {
		h.WriteServiceError(w, err, "student")
		return
	}
	h.WriteJSON(w, http.StatusCreated, dto.ImportResponse{
		Students: students,
		Count:    len(students),
	})
}

func studentFromRequest(req dto.StudentRequest) *storage.Student {
	return &storage.Student{
		Name:          req.Name,
		ParentContact: req.ParentContact,
		BaseFee:       req.BaseFee,
		BookFee:       req.BookFee,
		Notes:         req.Notes,
	}
}
