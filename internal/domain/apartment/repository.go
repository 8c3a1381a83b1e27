package apartment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for apartment persistence
type Repository interface {
	Create(ctx context.Context, a *Apartment) error
	Update(ctx context.Context, a *Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Apartment, error)

	// FindByLandlordAndName matches the name case-insensitively
	FindByLandlordAndName(ctx context.Context, landlordID uuid.UUID, name string) (*Apartment, error)

	// FindByLandlord lists a landlord's apartments ordered by name
	FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*Apartment, error)

	// FindActive lists active apartments ordered by name
	FindActive(ctx context.Context) ([]*Apartment, error)

	// IncrementTenants atomically bumps the occupancy counter
	IncrementTenants(ctx context.Context, id uuid.UUID) error
}
