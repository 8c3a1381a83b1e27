package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormComplaintRepository implements complaint.Repository using GORM
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewGormComplaintRepository creates a new GormComplaintRepository
func NewGormComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// Create inserts a new complaint
func (r *GormComplaintRepository) Create(ctx context.Context, c *complaint.Complaint) error {
	var model models.ComplaintModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update saves status, notes and resolution time under optimistic locking
func (r *GormComplaintRepository) Update(ctx context.Context, c *complaint.Complaint) error {
	result := r.db.WithContext(ctx).
		Model(&models.ComplaintModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]any{
			"status":         c.Status,
			"landlord_notes": c.LandlordNotes,
			"resolved_at":    c.ResolvedAt,
			"version":        c.Version,
			"updated_at":     c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a complaint by ID
func (r *GormComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*complaint.Complaint, error) {
	var model models.ComplaintModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Complaint")
	}
	return model.ToDomain(), nil
}

// FindByTenant lists a tenant's complaints, newest first
func (r *GormComplaintRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]*complaint.Complaint, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ?", tenantID))
}

// FindByApartment lists an apartment's complaints, newest first
func (r *GormComplaintRepository) FindByApartment(ctx context.Context, apartmentName string) ([]*complaint.Complaint, error) {
	return r.find(r.db.WithContext(ctx).Where(lowerEq("apartment_name"), strings.TrimSpace(apartmentName)))
}

func (r *GormComplaintRepository) find(query *gorm.DB) ([]*complaint.Complaint, error) {
	var rows []models.ComplaintModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*complaint.Complaint, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ complaint.Repository = (*GormComplaintRepository)(nil)
