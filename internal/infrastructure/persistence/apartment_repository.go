package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormApartmentRepository implements apartment.Repository using GORM
type GormApartmentRepository struct {
	db *gorm.DB
}

// NewGormApartmentRepository creates a new GormApartmentRepository
func NewGormApartmentRepository(db *gorm.DB) *GormApartmentRepository {
	return &GormApartmentRepository{db: db}
}

// Create inserts a new apartment
func (r *GormApartmentRepository) Create(ctx context.Context, a *apartment.Apartment) error {
	return createApartment(r.db.WithContext(ctx), a)
}

func createApartment(tx *gorm.DB, a *apartment.Apartment) error {
	if err := tx.Create(models.ApartmentModelFromDomain(a)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Apartment with this name already exists")
		}
		return err
	}
	return nil
}

// Update saves the landlord-editable fields under optimistic locking
func (r *GormApartmentRepository) Update(ctx context.Context, a *apartment.Apartment) error {
	result := r.db.WithContext(ctx).
		Model(&models.ApartmentModel{}).
		Where("id = ? AND version = ?", a.ID, a.Version-1).
		Updates(map[string]any{
			"name":        a.Name,
			"rent_amount": a.RentAmount,
			"location":    a.Location,
			"description": a.Description,
			"max_tenants": a.MaxTenants,
			"is_active":   a.IsActive,
			"version":     a.Version,
			"updated_at":  a.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Apartment with this name already exists")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an apartment
func (r *GormApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ApartmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Apartment")
	}
	return nil
}

// FindByID finds an apartment by ID
func (r *GormApartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*apartment.Apartment, error) {
	var model models.ApartmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Apartment")
	}
	return model.ToDomain(), nil
}

// FindByLandlordAndName matches the name case-insensitively
func (r *GormApartmentRepository) FindByLandlordAndName(ctx context.Context, landlordID uuid.UUID, name string) (*apartment.Apartment, error) {
	var model models.ApartmentModel
	if err := r.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Where(lowerEq("name"), strings.TrimSpace(name)).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Apartment")
	}
	return model.ToDomain(), nil
}

// FindByLandlord lists a landlord's apartments ordered by name
func (r *GormApartmentRepository) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*apartment.Apartment, error) {
	var rows []models.ApartmentModel
	if err := r.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return apartmentsToDomain(rows), nil
}

// FindActive lists active apartments ordered by name
func (r *GormApartmentRepository) FindActive(ctx context.Context) ([]*apartment.Apartment, error) {
	var rows []models.ApartmentModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return apartmentsToDomain(rows), nil
}

// IncrementTenants atomically bumps the occupancy counter
func (r *GormApartmentRepository) IncrementTenants(ctx context.Context, id uuid.UUID) error {
	return incrementTenants(r.db.WithContext(ctx), id)
}

func incrementTenants(tx *gorm.DB, id uuid.UUID) error {
	result := tx.Model(&models.ApartmentModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"current_tenants": gorm.Expr("current_tenants + 1"),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Apartment")
	}
	return nil
}

func apartmentsToDomain(rows []models.ApartmentModel) []*apartment.Apartment {
	out := make([]*apartment.Apartment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ apartment.Repository = (*GormApartmentRepository)(nil)
