package apartment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/shared"
)

// DefaultMaxTenants is the occupancy limit used when none is given
const DefaultMaxTenants = 10

// Apartment is a landlord-owned building that tenants join by name.
// CurrentTenants may exceed MaxTenants; the limit is advisory.
type Apartment struct {
	shared.BaseAggregateRoot
	Name           string
	LandlordID     uuid.UUID
	LandlordName   string
	RentAmount     decimal.Decimal
	Location       string
	Description    string
	MaxTenants     int
	CurrentTenants int
	IsActive       bool
}

// Details holds the landlord-editable fields
type Details struct {
	Name        string
	RentAmount  decimal.Decimal
	Location    string
	Description string
	MaxTenants  int
}

// NewApartment creates an active apartment owned by the given landlord
func NewApartment(landlordID uuid.UUID, landlordName string, d Details) (*Apartment, error) {
	if landlordID == uuid.Nil {
		return nil, shared.InvalidInput("Landlord is required")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, shared.InvalidInput("Apartment name is required")
	}
	if d.RentAmount.IsNegative() {
		return nil, shared.InvalidInput("Rent amount cannot be negative")
	}
	maxTenants := d.MaxTenants
	if maxTenants == 0 {
		maxTenants = DefaultMaxTenants
	}
	if maxTenants < 0 {
		return nil, shared.InvalidInput("Max tenants cannot be negative")
	}

	return &Apartment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		LandlordID:        landlordID,
		LandlordName:      strings.TrimSpace(landlordName),
		RentAmount:        d.RentAmount,
		Location:          strings.TrimSpace(d.Location),
		Description:       strings.TrimSpace(d.Description),
		MaxTenants:        maxTenants,
		IsActive:          true,
	}, nil
}

// Update is a partial change to an apartment; nil fields are left alone
type Update struct {
	Name        *string
	RentAmount  *decimal.Decimal
	Location    *string
	Description *string
	MaxTenants  *int
	IsActive    *bool
}

// Apply mutates the apartment with the non-nil fields of u
func (a *Apartment) Apply(u Update) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.InvalidInput("Apartment name cannot be empty")
		}
		a.Name = name
	}
	if u.RentAmount != nil {
		if u.RentAmount.IsNegative() {
			return shared.InvalidInput("Rent amount cannot be negative")
		}
		a.RentAmount = *u.RentAmount
	}
	if u.Location != nil {
		a.Location = strings.TrimSpace(*u.Location)
	}
	if u.Description != nil {
		a.Description = strings.TrimSpace(*u.Description)
	}
	if u.MaxTenants != nil {
		if *u.MaxTenants < 0 {
			return shared.InvalidInput("Max tenants cannot be negative")
		}
		a.MaxTenants = *u.MaxTenants
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// IsFull reports whether occupancy has reached the advisory limit
func (a *Apartment) IsFull() bool {
	return a.MaxTenants > 0 && a.CurrentTenants >= a.MaxTenants
}
