package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
)

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	u := newTestUser(identity.RoleTenant, "Alice", "Sunrise")
	u.Email = "alice@example.com"
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindByEmail(ctx, "  ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, identity.RoleTenant, found.Role)

	exists, err := repo.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNationalID(ctx, u.NationalID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	a := newTestUser(identity.RoleTenant, "A", "Sunrise")
	b := newTestUser(identity.RoleTenant, "B", "Sunrise")
	b.Email = a.Email
	require.NoError(t, repo.Create(ctx, a))

	err := repo.Create(ctx, b)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestGormUserRepository_FindByApartmentIsCaseInsensitive(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser(identity.RoleTenant, "Zed", "Sunrise Court")))
	require.NoError(t, repo.Create(ctx, newTestUser(identity.RoleTenant, "Amy", "sunrise court")))
	require.NoError(t, repo.Create(ctx, newTestUser(identity.RoleTenant, "Bob", "Other")))
	require.NoError(t, repo.Create(ctx, newTestUser(identity.RoleLandlord, "Lord", "SUNRISE COURT")))

	tenants, err := repo.FindByApartment(ctx, "SUNRISE court", identity.RoleTenant)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "Amy", tenants[0].Name)
	assert.Equal(t, "Zed", tenants[1].Name)

	landlord, err := repo.FindLandlordForApartment(ctx, "sunrise court")
	require.NoError(t, err)
	assert.Equal(t, "Lord", landlord.Name)

	_, err = repo.FindLandlordForApartment(ctx, "nowhere")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormUserRepository_UpdateRentAmount(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	ctx := context.Background()

	landlord := newTestUser(identity.RoleLandlord, "Lord", "Sunrise")
	tenant := newTestUser(identity.RoleTenant, "Ten", "Sunrise")
	require.NoError(t, repo.Create(ctx, landlord))
	require.NoError(t, repo.Create(ctx, tenant))

	require.NoError(t, repo.UpdateRentAmount(ctx, landlord.ID, decimal.NewFromInt(1500)))
	found, err := repo.FindByID(ctx, landlord.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(found.RentAmount))

	err = repo.UpdateRentAmount(ctx, tenant.ID, decimal.NewFromInt(10))
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	landlords, err := repo.FindAllLandlords(ctx)
	require.NoError(t, err)
	assert.Len(t, landlords, 1)
}
