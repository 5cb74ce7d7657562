package contract

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryAction names what happened to a contract
type HistoryAction string

const (
	ActionCreated             HistoryAction = "created"
	ActionUpdated             HistoryAction = "updated"
	ActionPaymentApplied      HistoryAction = "payment_applied"
	ActionInstallmentMarked   HistoryAction = "installment_marked_paid"
	ActionInstallmentUpdated  HistoryAction = "installment_updated"
	ActionScheduleGenerated   HistoryAction = "schedule_generated"
	ActionStatusChanged       HistoryAction = "status_changed"
	ActionInvoiceExported     HistoryAction = "invoice_exported"
	ActionCertificateUploaded HistoryAction = "certificate_uploaded"
	ActionCertificateDeleted  HistoryAction = "certificate_deleted"
)

// History is an audit row describing one change to a contract
type History struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	User       string
	Action     HistoryAction
	OldData    string
	NewData    string
	CreatedAt  time.Time
}

// NewHistory builds a history row; old and new are marshalled to JSON when not nil
func NewHistory(contractID uuid.UUID, user string, action HistoryAction, old, new any) *History {
	return &History{
		ID:         uuid.New(),
		ContractID: contractID,
		User:       user,
		Action:     action,
		OldData:    toJSON(old),
		NewData:    toJSON(new),
		CreatedAt:  time.Now(),
	}
}

func toJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
