package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create persists a new user
	Create(ctx context.Context, user *User) error

	// UpdateRentAmount sets a landlord's rent baseline
	UpdateRentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByNationalID checks if a national ID is already registered
	ExistsByNationalID(ctx context.Context, nationalID string) (bool, error)

	// FindByApartment lists users of a role whose apartment name matches
	// case-insensitively, ordered by name
	FindByApartment(ctx context.Context, apartmentName string, role Role) ([]*User, error)

	// FindLandlordForApartment returns the first landlord of an apartment
	FindLandlordForApartment(ctx context.Context, apartmentName string) (*User, error)

	// FindAllLandlords lists every landlord account
	FindAllLandlords(ctx context.Context) ([]*User, error)
}
