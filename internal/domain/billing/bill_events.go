package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/shared"
)

const (
	EventTypeBillGenerated       = "BillGenerated"
	EventTypeBillPaymentRecorded = "BillPaymentRecorded"

	aggregateTypeBill = "Bill"
)

// BillGeneratedEvent is raised when monthly generation creates a bill
type BillGeneratedEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	TenantName    string          `json:"tenant_name"`
	TenantEmail   string          `json:"tenant_email"`
	ApartmentName string          `json:"apartment_name"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
}

// NewBillGeneratedEvent creates a BillGeneratedEvent
func NewBillGeneratedEvent(b *Bill) *BillGeneratedEvent {
	return &BillGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillGenerated, aggregateTypeBill, b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		TenantName:      b.TenantName,
		TenantEmail:     b.TenantEmail,
		ApartmentName:   b.ApartmentName,
		Amount:          b.Amount,
		DueDate:         b.DueDate,
		Month:           b.Month,
		Year:            b.Year,
	}
}

// BillPaymentRecordedEvent is raised for every applied payment
type BillPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillID          uuid.UUID       `json:"bill_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	TenantName      string          `json:"tenant_name"`
	TenantEmail     string          `json:"tenant_email"`
	PaymentIndex    int             `json:"payment_index"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          BillStatus      `json:"status"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
}

// NewBillPaymentRecordedEvent creates a BillPaymentRecordedEvent for the
// history entry at index
func NewBillPaymentRecordedEvent(b *Bill, index int) *BillPaymentRecordedEvent {
	rec := b.PaymentHistory[index]
	return &BillPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentRecorded, aggregateTypeBill, b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		TenantName:      b.TenantName,
		TenantEmail:     b.TenantEmail,
		PaymentIndex:    index,
		Amount:          rec.Amount,
		Method:          rec.Method,
		RemainingAmount: b.RemainingAmount,
		Status:          b.Status,
		Month:           b.Month,
		Year:            b.Year,
	}
}
