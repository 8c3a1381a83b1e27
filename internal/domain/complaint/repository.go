package complaint

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for complaint persistence.
// Listings are ordered by creation time, newest first.
type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	Update(ctx context.Context, c *Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Complaint, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Complaint, error)
	FindByApartment(ctx context.Context, apartmentName string) ([]*Complaint, error)
}
