package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/billing"
)

// GenerateInput selects the billing month. DueDate defaults to the
// configured day of that month.
type GenerateInput struct {
	Month   int
	Year    int
	DueDate *time.Time
}

// GenerationResult reports a generation run for one landlord
type GenerationResult struct {
	Created []BillResponse `json:"created"`
	Skipped int            `json:"skipped"`
}

// GenerationSummary reports a scheduled run across all landlords
type GenerationSummary struct {
	Period    billing.Period
	Landlords int
	Created   int
	Skipped   int
	Failed    int
}

// UpdateBillInput is a landlord edit; nil fields are unchanged
type UpdateBillInput struct {
	Amount      *decimal.Decimal
	Description *string
	DueDate     *time.Time
}

// PaymentRecordResponse is one entry of the payment history
type PaymentRecordResponse struct {
	Index  int                   `json:"index"`
	ID     uuid.UUID             `json:"id"`
	Amount decimal.Decimal       `json:"amount"`
	Date   time.Time             `json:"date"`
	Method billing.PaymentMethod `json:"method"`
}

// BillResponse is the public view of a bill
type BillResponse struct {
	ID              uuid.UUID               `json:"id"`
	TenantID        uuid.UUID               `json:"tenantId"`
	TenantName      string                  `json:"tenantName"`
	TenantEmail     string                  `json:"tenantEmail"`
	LandlordID      uuid.UUID               `json:"landlordId"`
	LandlordName    string                  `json:"landlordName"`
	ApartmentName   string                  `json:"apartmentName"`
	Amount          decimal.Decimal         `json:"amount"`
	PaidAmount      decimal.Decimal         `json:"paidAmount"`
	RemainingAmount decimal.Decimal         `json:"remainingAmount"`
	Status          billing.BillStatus      `json:"status"`
	DueDate         time.Time               `json:"dueDate"`
	Month           int                     `json:"month"`
	Year            int                     `json:"year"`
	Description     string                  `json:"description"`
	PaymentDate     *time.Time              `json:"paymentDate,omitempty"`
	PaymentMethod   billing.PaymentMethod   `json:"paymentMethod,omitempty"`
	PaymentHistory  []PaymentRecordResponse `json:"paymentHistory"`
	Version         int                     `json:"version"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// ToBillResponse converts a domain bill
func ToBillResponse(b *billing.Bill) BillResponse {
	history := make([]PaymentRecordResponse, len(b.PaymentHistory))
	for i, p := range b.PaymentHistory {
		history[i] = PaymentRecordResponse{
			Index:  i,
			ID:     p.ID,
			Amount: p.Amount,
			Date:   p.Date,
			Method: p.Method,
		}
	}
	return BillResponse{
		ID:              b.ID,
		TenantID:        b.TenantID,
		TenantName:      b.TenantName,
		TenantEmail:     b.TenantEmail,
		LandlordID:      b.LandlordID,
		LandlordName:    b.LandlordName,
		ApartmentName:   b.ApartmentName,
		Amount:          b.Amount,
		PaidAmount:      b.PaidAmount,
		RemainingAmount: b.RemainingAmount,
		Status:          b.Status,
		DueDate:         b.DueDate,
		Month:           b.Month,
		Year:            b.Year,
		Description:     b.Description,
		PaymentDate:     b.PaymentDate,
		PaymentMethod:   b.PaymentMethod,
		PaymentHistory:  history,
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToBillResponses converts a slice of bills
func ToBillResponses(bills []*billing.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i, b := range bills {
		out[i] = ToBillResponse(b)
	}
	return out
}
