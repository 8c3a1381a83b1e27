package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

func TestUserService_ResolveActor(t *testing.T) {
	users := new(testutil.MockUserRepository)
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()
	tenant := testutil.NewTenant("Tom", "Oak")
	ghost := uuid.New()

	users.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	users.On("FindByID", mock.Anything, ghost).Return(nil, shared.ErrNotFound)

	actor, err := svc.ResolveActor(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.Actor{ID: tenant.ID, Role: identity.RoleTenant, ApartmentName: "Oak"}, actor)

	_, err = svc.ResolveActor(ctx, ghost)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestUserService_ListTenantsIsApartmentScoped(t *testing.T) {
	users := new(testutil.MockUserRepository)
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenants := []*identity.User{testutil.NewTenant("Amy", "oak"), testutil.NewTenant("Ben", "OAK")}

	users.On("FindByApartment", mock.Anything, "Oak", identity.RoleTenant).Return(tenants, nil)

	got, err := svc.ListTenants(ctx, testutil.Actor(landlord))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Amy", got[0].Name)

	_, err = svc.ListTenants(ctx, testutil.Actor(tenants[0]))
	assert.ErrorIs(t, err, shared.ErrForbidden)

	homeless := testutil.NewLandlord("Nomad", "", 1000)
	_, err = svc.ListTenants(ctx, testutil.Actor(homeless))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUserService_ListLandlords(t *testing.T) {
	users := new(testutil.MockUserRepository)
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()
	tenant := testutil.NewTenant("Tom", "Oak")
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)

	users.On("FindByApartment", mock.Anything, "Oak", identity.RoleLandlord).Return([]*identity.User{landlord}, nil)

	got, err := svc.ListLandlords(ctx, testutil.Actor(tenant))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, landlord.ID, got[0].ID)

	_, err = svc.ListLandlords(ctx, testutil.Actor(landlord))
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserService_UpdateRentAmount(t *testing.T) {
	users := new(testutil.MockUserRepository)
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	amount := decimal.NewFromInt(1250)

	users.On("FindByID", mock.Anything, landlord.ID).Return(landlord, nil)
	users.On("UpdateRentAmount", mock.Anything, landlord.ID, amount).Return(nil)

	got, err := svc.UpdateRentAmount(ctx, testutil.Actor(landlord), amount)
	require.NoError(t, err)
	assert.True(t, amount.Equal(got.RentAmount))

	_, err = svc.UpdateRentAmount(ctx, testutil.Actor(landlord), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	tenant := testutil.NewTenant("Tom", "Oak")
	_, err = svc.UpdateRentAmount(ctx, testutil.Actor(tenant), amount)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	users.AssertNumberOfCalls(t, "UpdateRentAmount", 1)
}
