package apartment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/apartment"
)

// CreateInput holds the fields of a new apartment
type CreateInput struct {
	Name        string
	RentAmount  decimal.Decimal
	Location    string
	Description string
	MaxTenants  int
}

// UpdateInput is a partial apartment change; nil fields are left alone
type UpdateInput struct {
	Name        *string
	RentAmount  *decimal.Decimal
	Location    *string
	Description *string
	MaxTenants  *int
	IsActive    *bool
}

// ApartmentResponse is the public view of an apartment
type ApartmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	LandlordID     uuid.UUID       `json:"landlordId"`
	LandlordName   string          `json:"landlordName"`
	RentAmount     decimal.Decimal `json:"rentAmount"`
	Location       string          `json:"location,omitempty"`
	Description    string          `json:"description,omitempty"`
	MaxTenants     int             `json:"maxTenants"`
	CurrentTenants int             `json:"currentTenants"`
	IsActive       bool            `json:"isActive"`
	IsFull         bool            `json:"isFull"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ToApartmentResponse converts a domain apartment
func ToApartmentResponse(a *apartment.Apartment) ApartmentResponse {
	return ApartmentResponse{
		ID:             a.ID,
		Name:           a.Name,
		LandlordID:     a.LandlordID,
		LandlordName:   a.LandlordName,
		RentAmount:     a.RentAmount,
		Location:       a.Location,
		Description:    a.Description,
		MaxTenants:     a.MaxTenants,
		CurrentTenants: a.CurrentTenants,
		IsActive:       a.IsActive,
		IsFull:         a.IsFull(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToApartmentResponses converts a slice of apartments
func ToApartmentResponses(list []*apartment.Apartment) []ApartmentResponse {
	out := make([]ApartmentResponse, len(list))
	for i, a := range list {
		out[i] = ToApartmentResponse(a)
	}
	return out
}
