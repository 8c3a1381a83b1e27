package persistence

import (
	"context"

	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRegistrar persists new accounts together with their apartment side
// effects in a single transaction
type GormRegistrar struct {
	db *gorm.DB
}

// NewGormRegistrar creates a new GormRegistrar
func NewGormRegistrar(db *gorm.DB) *GormRegistrar {
	return &GormRegistrar{db: db}
}

// RegisterLandlord inserts the landlord and the apartment they own
func (r *GormRegistrar) RegisterLandlord(ctx context.Context, user *identity.User, apt *apartment.Apartment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}
		return createApartment(tx, apt)
	})
}

// RegisterTenant inserts the tenant and increments the occupancy of the
// apartment referenced by user.ApartmentID
func (r *GormRegistrar) RegisterTenant(ctx context.Context, user *identity.User) error {
	if user.ApartmentID == nil {
		return shared.InvalidInput("Apartment is required for tenants")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}
		return incrementTenants(tx, *user.ApartmentID)
	})
}

func createUser(tx *gorm.DB, user *identity.User) error {
	if err := tx.Create(models.UserModelFromDomain(user)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Email or national ID already registered")
		}
		return err
	}
	return nil
}
