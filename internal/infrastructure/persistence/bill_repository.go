package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Bill")
	}
	return model.ToDomain(), nil
}

// ExistsForPeriod reports whether the tenant already has a bill for the period
func (r *GormBillRepository) ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, period billing.Period) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BillModel{}).
		Where("tenant_id = ? AND month = ? AND year = ?", tenantID, period.Month, period.Year).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new bill; the period unique index turns a racing
// duplicate into shared.ErrAlreadyExists
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	if err := r.db.WithContext(ctx).Create(models.BillModelFromDomain(bill)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Updates(map[string]any{
			"amount":           bill.Amount,
			"paid_amount":      bill.PaidAmount,
			"remaining_amount": bill.RemainingAmount,
			"status":           bill.Status,
			"due_date":         bill.DueDate,
			"description":      bill.Description,
			"payment_date":     bill.PaymentDate,
			"payment_method":   bill.PaymentMethod,
			"payment_history":  bill.PaymentHistory,
			"version":          bill.Version,
			"updated_at":       bill.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Find lists bills matching the filter in the requested order
func (r *GormBillRepository) Find(ctx context.Context, filter billing.BillFilter) ([]*billing.Bill, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{})
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if name := strings.TrimSpace(filter.ApartmentName); name != "" {
		query = query.Where(lowerEq("apartment_name"), name)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatus) > 0 {
		query = query.Where("status NOT IN ?", filter.ExcludeStatus)
	}
	query = query.Order(billOrderClause(filter.OrderBy))

	var rows []models.BillModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	bills := make([]*billing.Bill, len(rows))
	for i := range rows {
		bills[i] = rows[i].ToDomain()
	}
	return bills, nil
}

// billOrderClause whitelists the listing orders; the id tiebreaker keeps
// results stable
func billOrderClause(order billing.BillOrder) string {
	switch order {
	case billing.OrderDueDateAsc:
		return "due_date ASC, id ASC"
	case billing.OrderDueDateDesc:
		return "due_date DESC, id ASC"
	case billing.OrderPaymentDateDesc:
		return "payment_date DESC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
