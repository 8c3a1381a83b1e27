package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema. A
// single connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestUser(role identity.Role, name, apartmentName string) *identity.User {
	id := uuid.New()
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             id.String()[:8] + "@example.com",
		PasswordHash:      "hash",
		NationalID:        id.String(),
		Role:              role,
		ApartmentName:     apartmentName,
		RentAmount:        decimal.Zero,
	}
}

func newTestApartment(t *testing.T, landlordID uuid.UUID, name string) *apartment.Apartment {
	t.Helper()
	a, err := apartment.NewApartment(landlordID, "Owner", apartment.Details{
		Name:       name,
		RentAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	return a
}

func newTestBill(t *testing.T, tenantID uuid.UUID, apartmentName string, month int, amount int64) *billing.Bill {
	t.Helper()
	period := billing.Period{Month: month, Year: 2025}
	b, err := billing.NewMonthlyBill(
		billing.Party{ID: tenantID, Name: "Tenant", Email: "t@example.com"},
		billing.Party{ID: uuid.New(), Name: "Landlord"},
		apartmentName,
		decimal.NewFromInt(amount),
		period,
		period.DefaultDueDate(5),
	)
	require.NoError(t, err)
	return b
}
