package rules

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for rule book persistence
type Repository interface {
	// Save inserts or updates a rule book under optimistic locking
	Save(ctx context.Context, b *RuleBook) error

	// FindByLandlordAndApartment returns the landlord's own rule book
	FindByLandlordAndApartment(ctx context.Context, landlordID uuid.UUID, apartmentName string) (*RuleBook, error)

	// FindByApartment returns every landlord's rule book for the apartment,
	// matched case-insensitively, oldest first. No books is an empty slice.
	FindByApartment(ctx context.Context, apartmentName string) ([]*RuleBook, error)

	// FindByRuleID returns the rule book containing the rule
	FindByRuleID(ctx context.Context, ruleID uuid.UUID) (*RuleBook, error)
}
