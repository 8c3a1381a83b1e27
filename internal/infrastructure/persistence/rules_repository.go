package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/rules"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRulesRepository implements rules.Repository using GORM
type GormRulesRepository struct {
	db *gorm.DB
}

// NewGormRulesRepository creates a new GormRulesRepository
func NewGormRulesRepository(db *gorm.DB) *GormRulesRepository {
	return &GormRulesRepository{db: db}
}

// Save updates the rule book if its stored version is b.Version-1 and
// inserts it when it does not exist yet. Losing a race on either path
// yields shared.ErrConcurrencyConflict.
func (r *GormRulesRepository) Save(ctx context.Context, b *rules.RuleBook) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.RuleBookModel{}).
		Where("id = ? AND version = ?", b.ID, b.Version-1).
		Updates(map[string]any{
			"rules":      b.Rules,
			"version":    b.Version,
			"updated_at": b.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.RuleBookModel{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}

	var model models.RuleBookModel
	model.FromDomain(b)
	if err := db.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// FindByLandlordAndApartment returns the landlord's own rule book
func (r *GormRulesRepository) FindByLandlordAndApartment(ctx context.Context, landlordID uuid.UUID, apartmentName string) (*rules.RuleBook, error) {
	var model models.RuleBookModel
	if err := r.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Where(lowerEq("apartment_name"), strings.TrimSpace(apartmentName)).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Rule book")
	}
	return model.ToDomain(), nil
}

// FindByApartment returns the rule books of all landlords of the
// apartment, oldest first
func (r *GormRulesRepository) FindByApartment(ctx context.Context, apartmentName string) ([]*rules.RuleBook, error) {
	var rows []models.RuleBookModel
	if err := r.db.WithContext(ctx).
		Where(lowerEq("apartment_name"), strings.TrimSpace(apartmentName)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	books := make([]*rules.RuleBook, len(rows))
	for i := range rows {
		books[i] = rows[i].ToDomain()
	}
	return books, nil
}

// FindByRuleID returns the rule book containing the rule. The text match
// narrows candidates; Contains confirms the id belongs to a rule.
func (r *GormRulesRepository) FindByRuleID(ctx context.Context, ruleID uuid.UUID) (*rules.RuleBook, error) {
	var rows []models.RuleBookModel
	if err := r.db.WithContext(ctx).
		Where("CAST(rules AS TEXT) LIKE ?", "%"+ruleID.String()+"%").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		if b := rows[i].ToDomain(); b.Contains(ruleID) {
			return b, nil
		}
	}
	return nil, notFoundOr(gorm.ErrRecordNotFound, "Rule")
}

var _ rules.Repository = (*GormRulesRepository)(nil)
