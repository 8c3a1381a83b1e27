// Package billing holds the rent ledger: bills, partial payments and the
// status rules that tie them together.
package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/shared"
)

// BillStatus is derived from the running balance
type BillStatus string

const (
	BillStatusPending BillStatus = "Pending"
	BillStatusPartial BillStatus = "Partial"
	BillStatusPaid    BillStatus = "Paid"
)

// PaymentMethod records how a payment was made
type PaymentMethod string

const (
	PaymentMethodMPesa  PaymentMethod = "M-Pesa"
	PaymentMethodPayPal PaymentMethod = "PayPal"
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOther  PaymentMethod = "Other"
)

// IsValid checks the method against the known set
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMPesa, PaymentMethodPayPal, PaymentMethodCash, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentRecord is one entry of a bill's payment history.
// Entries are append-only and addressed externally by position.
type PaymentRecord struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Method PaymentMethod   `json:"method"`
}

// PaymentRecords is stored as a JSONB array
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (p *PaymentRecords) Scan(value any) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Bill is one tenant's rent obligation for a month.
//
// Amount always equals PaidAmount + RemainingAmount and Status is a pure
// function of the balance (see deriveStatus).
type Bill struct {
	shared.BaseAggregateRoot
	TenantID        uuid.UUID
	TenantName      string
	TenantEmail     string
	LandlordID      uuid.UUID
	LandlordName    string
	ApartmentName   string
	Amount          decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          BillStatus
	DueDate         time.Time
	Month           int
	Year            int
	Description     string
	PaymentDate     *time.Time
	PaymentMethod   PaymentMethod
	PaymentHistory  PaymentRecords
}

// Party is a snapshot of a user attached to a bill
type Party struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Period is a billing month
type Period struct {
	Month int
	Year  int
}

// Validate checks the month and year range
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return shared.InvalidInput("Month must be between 1 and 12")
	}
	if p.Year < 2000 || p.Year > 9999 {
		return shared.InvalidInput("Year is out of range")
	}
	return nil
}

// String renders the period as "January 2025"
func (p Period) String() string {
	return fmt.Sprintf("%s %d", time.Month(p.Month).String(), p.Year)
}

// DefaultDueDate is the given day of the period's month, clamped to the
// month's last day.
func (p Period) DefaultDueDate(day int) time.Time {
	if day < 1 {
		day = 1
	}
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

// NewMonthlyBill creates a pending bill for the tenant's rent
func NewMonthlyBill(tenant, landlord Party, apartmentName string, amount decimal.Decimal, period Period, dueDate time.Time) (*Bill, error) {
	if tenant.ID == uuid.Nil || landlord.ID == uuid.Nil {
		return nil, shared.InvalidInput("Bill requires a tenant and a landlord")
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, shared.InvalidInput("Bill amount cannot be negative")
	}
	if dueDate.IsZero() {
		return nil, shared.InvalidInput("Due date is required")
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenant.ID,
		TenantName:        tenant.Name,
		TenantEmail:       tenant.Email,
		LandlordID:        landlord.ID,
		LandlordName:      landlord.Name,
		ApartmentName:     strings.TrimSpace(apartmentName),
		Amount:            amount,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   amount,
		DueDate:           dueDate,
		Month:             period.Month,
		Year:              period.Year,
		Description:       "Monthly rent for " + period.String(),
		PaymentHistory:    PaymentRecords{},
	}
	b.Status = b.deriveStatus()
	b.AddDomainEvent(NewBillGeneratedEvent(b))
	return b, nil
}

// Period returns the bill's billing month
func (b *Bill) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// ApplyPayment records a payment against the remaining balance
func (b *Bill) ApplyPayment(amount decimal.Decimal, method PaymentMethod) error {
	if !amount.IsPositive() {
		return shared.InvalidInput("Payment amount must be positive")
	}
	if amount.GreaterThan(b.RemainingAmount) {
		return shared.InvalidInput("Payment amount exceeds remaining balance")
	}
	if !method.IsValid() {
		return shared.InvalidInput("Unsupported payment method")
	}

	now := time.Now()
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.RemainingAmount = b.RemainingAmount.Sub(amount)
	b.PaymentHistory = append(b.PaymentHistory, PaymentRecord{
		ID:     uuid.New(),
		Amount: amount,
		Date:   now,
		Method: method,
	})
	b.Status = b.deriveStatus()
	if b.Status == BillStatusPaid {
		b.PaymentDate = &now
		b.PaymentMethod = method
	}

	b.UpdatedAt = now
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaymentRecordedEvent(b, len(b.PaymentHistory)-1))
	return nil
}

// Revision is a landlord edit to a bill; nil fields are unchanged
type Revision struct {
	Amount      *decimal.Decimal
	Description *string
	DueDate     *time.Time
}

// Revise applies a landlord edit. The remaining balance is re-derived from
// what has already been paid and is allowed to go negative.
func (b *Bill) Revise(r Revision) error {
	if r.Amount != nil {
		if r.Amount.IsNegative() {
			return shared.InvalidInput("Bill amount cannot be negative")
		}
		b.Amount = *r.Amount
	}
	if r.Description != nil {
		b.Description = strings.TrimSpace(*r.Description)
	}
	if r.DueDate != nil {
		if r.DueDate.IsZero() {
			return shared.InvalidInput("Due date is invalid")
		}
		b.DueDate = *r.DueDate
	}

	b.RemainingAmount = b.Amount.Sub(b.PaidAmount)
	b.Status = b.deriveStatus()
	now := time.Now()
	if b.Status == BillStatusPaid && b.PaymentDate == nil {
		b.PaymentDate = &now
	}
	if b.Status != BillStatusPaid {
		b.PaymentDate = nil
	}
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// Payment returns the history entry at index
func (b *Bill) Payment(index int) (PaymentRecord, error) {
	if index < 0 || index >= len(b.PaymentHistory) {
		return PaymentRecord{}, shared.NotFound("Payment record")
	}
	return b.PaymentHistory[index], nil
}

// IsBalanced checks amount = paid + remaining
func (b *Bill) IsBalanced() bool {
	return b.Amount.Equal(b.PaidAmount.Add(b.RemainingAmount))
}

func (b *Bill) deriveStatus() BillStatus {
	switch {
	case b.RemainingAmount.IsZero():
		return BillStatusPaid
	case !b.PaidAmount.IsZero():
		return BillStatusPartial
	default:
		return BillStatusPending
	}
}
