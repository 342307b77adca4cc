package dto

import (
	"time"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"` // "ok" or "degraded"
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"` // "ok" or "unavailable"
	OCR       string `json:"ocr"`      // "enabled" or "disabled"
}

// NewHealthResponse builds a health response stamped with the current time.
func NewHealthResponse(dbErr error, ocrEnabled bool) HealthResponse {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "ok",
		OCR:       "disabled",
	}
	if dbErr != nil {
		resp.Status = "degraded"
		resp.Database = "unavailable"
	}
	if ocrEnabled {
		resp.OCR = "enabled"
	}
	return resp
}

// StudentListResponse is returned when listing students.
type StudentListResponse struct {
	Students []*storage.Student `json:"students"`
	Count    int                `json:"count"`
}

// PaymentListResponse is returned when listing payments.
type PaymentListResponse struct {
	Payments []*storage.Payment `json:"payments"`
	Count    int                `json:"count"`
}

// OutcomeResponse is one outcome of a run.
type OutcomeResponse struct {
	Seq int `json:"seq"`
	reconcile.Record
	Confirmed bool `json:"confirmed"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	InputText    string            `json:"input_text,omitempty"`
	CreatedAt    string            `json:"created_at"`
	DurationMs   int64             `json:"duration_ms"`
	RosterSize   int               `json:"roster_size"`
	MatchedCount int               `json:"matched_count"`
	Outcomes     []OutcomeResponse `json:"outcomes"`
}

// NewRunResponse converts a stored run.
func NewRunResponse(run *storage.Run) RunResponse {
	resp := RunResponse{
		ID:           run.ID,
		Source:       run.Source,
		InputText:    run.InputText,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
		DurationMs:   run.DurationMs,
		RosterSize:   run.RosterSize,
		MatchedCount: run.MatchedCount,
		Outcomes:     make([]OutcomeResponse, 0, len(run.Outcomes)),
	}
	for _, o := range run.Outcomes {
		rec := o.Record
		if rec.StudentIDs == nil {
			rec.StudentIDs = []int64{}
		}
		resp.Outcomes = append(resp.Outcomes, OutcomeResponse{
			Seq:       o.Seq,
			Record:    rec,
			Confirmed: o.ConfirmedAt != nil,
		})
	}
	return resp
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs   []storage.RunSummary `json:"runs"`
	Count  int                  `json:"count"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// BatchItemResponse is one entry of a batch result; exactly one of Run and
// Error is set.
type BatchItemResponse struct {
	Index int          `json:"index"`
	Run   *RunResponse `json:"run,omitempty"`
	Error string       `json:"error,omitempty"`
}

// BatchResponse is returned by the batch reconcile endpoint.
type BatchResponse struct {
	Items []BatchItemResponse `json:"items"`
	Count int                 `json:"count"`
}

// ConfirmResponse lists the payments recorded by a confirmation.
type ConfirmResponse struct {
	RunID    string             `json:"run_id"`
	Seq      int                `json:"seq"`
	Payments []*storage.Payment `json:"payments"`
}

// ImportResponse is returned by a roster import.
type ImportResponse struct {
	Students []*storage.Student `json:"students"`
	Count    int                `json:"count"`
}
