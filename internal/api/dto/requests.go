package dto

// StudentRequest is the body for creating or updating a student.
type StudentRequest struct {
	Name          string `json:"name"`
	ParentContact string `json:"parent_contact"`
	BaseFee       int64  `json:"base_fee"`
	BookFee       int64  `json:"book_fee"`
	Notes         string `json:"notes"`
}

// ImportRequest is the body for a roster bulk import.
type ImportRequest struct {
	Text string `json:"text"`
}

// PaymentRequest is the body for recording a payment by hand.
type PaymentRequest struct {
	StudentID     int64  `json:"student_id"`
	AmountPaid    int64  `json:"amount_paid"`
	PaymentDate   string `json:"payment_date,omitempty"` // RFC 3339 or YYYY-MM-DD
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
}

// ReconcileRequest is the body for reconciling pasted text.
type ReconcileRequest struct {
	Text   string `json:"text"`
	DryRun bool   `json:"dry_run"`
}

// BatchReconcileRequest is the body for reconciling several texts.
type BatchReconcileRequest struct {
	Texts []string `json:"texts"`
}

// ConfirmRequest is the optional body for confirming an outcome.
type ConfirmRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date,omitempty"`
}

// MaxBatchTexts bounds a batch request.
const MaxBatchTexts = 50
