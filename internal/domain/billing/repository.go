package billing

import (
	"context"

	"github.com/google/uuid"
)

// BillFilter narrows bill queries. Exactly one of TenantID or
// ApartmentName is expected to be set.
type BillFilter struct {
	TenantID      *uuid.UUID
	ApartmentName string // matched case-insensitively
	Statuses      []BillStatus
	ExcludeStatus []BillStatus
	OrderBy       BillOrder
}

// BillOrder is one of the fixed listing orders
type BillOrder string

const (
	OrderDueDateAsc      BillOrder = "due_date asc"
	OrderDueDateDesc     BillOrder = "due_date desc"
	OrderPaymentDateDesc BillOrder = "payment_date desc"
	OrderCreatedAtDesc   BillOrder = "created_at desc"
)

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// ExistsForPeriod reports whether the tenant already has a bill for the period
	ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, period Period) (bool, error)

	// Create inserts a new bill. A duplicate (tenant, month, year) yields
	// shared.ErrAlreadyExists.
	Create(ctx context.Context, bill *Bill) error

	// SaveWithLock persists a mutated bill only if its stored version is
	// bill.Version-1, otherwise shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, bill *Bill) error

	Find(ctx context.Context, filter BillFilter) ([]*Bill, error)
}
