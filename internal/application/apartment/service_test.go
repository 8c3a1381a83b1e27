package apartment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

func setupService() (*Service, *testutil.MockApartmentRepository, *testutil.MockUserRepository) {
	apts := new(testutil.MockApartmentRepository)
	users := new(testutil.MockUserRepository)
	return NewService(apts, users, zap.NewNop()), apts, users
}

func newApartment(t *testing.T, landlordID uuid.UUID, name string) *apartment.Apartment {
	t.Helper()
	a, err := apartment.NewApartment(landlordID, "Lara", apartment.Details{Name: name, RentAmount: decimal.NewFromInt(900)})
	require.NoError(t, err)
	return a
}

func TestService_Create(t *testing.T) {
	svc, apts, users := setupService()
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)

	users.On("FindByID", mock.Anything, landlord.ID).Return(landlord, nil)
	apts.On("FindByLandlordAndName", mock.Anything, landlord.ID, "Pine").Return(nil, shared.ErrNotFound)
	apts.On("Create", mock.Anything, mock.AnythingOfType("*apartment.Apartment")).Return(nil)

	got, err := svc.Create(ctx, testutil.Actor(landlord), CreateInput{
		Name:       " Pine ",
		RentAmount: decimal.NewFromInt(800),
		Location:   "Westlands",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pine", got.Name)
	assert.Equal(t, "Lara", got.LandlordName)
	assert.Equal(t, apartment.DefaultMaxTenants, got.MaxTenants)
	assert.True(t, got.IsActive)
	assert.Zero(t, got.CurrentTenants)
}

func TestService_CreateRejectsDuplicateName(t *testing.T) {
	svc, apts, users := setupService()
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	existing := newApartment(t, landlord.ID, "Oak")

	users.On("FindByID", mock.Anything, landlord.ID).Return(landlord, nil)
	apts.On("FindByLandlordAndName", mock.Anything, landlord.ID, "oak").Return(existing, nil)

	_, err := svc.Create(ctx, testutil.Actor(landlord), CreateInput{Name: "oak"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	apts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_CreateRequiresLandlord(t *testing.T) {
	svc, _, _ := setupService()
	tenant := testutil.NewTenant("Tom", "Oak")

	_, err := svc.Create(context.Background(), testutil.Actor(tenant), CreateInput{Name: "Pine"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_UpdateOwnedApartment(t *testing.T) {
	svc, apts, _ := setupService()
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	a := newApartment(t, landlord.ID, "Oak")
	rent := decimal.NewFromInt(1100)
	inactive := false

	apts.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	apts.On("Update", mock.Anything, a).Return(nil)

	got, err := svc.Update(ctx, testutil.Actor(landlord), a.ID, UpdateInput{RentAmount: &rent, IsActive: &inactive})
	require.NoError(t, err)
	assert.True(t, rent.Equal(got.RentAmount))
	assert.False(t, got.IsActive)
	assert.Equal(t, 2, a.Version)
}

func TestService_ForeignApartmentIsNotFound(t *testing.T) {
	svc, apts, _ := setupService()
	ctx := context.Background()
	owner := testutil.NewLandlord("Lara", "Oak", 1000)
	other := testutil.NewLandlord("Otto", "Oak", 1000)
	a := newApartment(t, owner.ID, "Oak")
	name := "Mine now"

	apts.On("FindByID", mock.Anything, a.ID).Return(a, nil)

	_, err := svc.Update(ctx, testutil.Actor(other), a.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(ctx, testutil.Actor(other), a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	apts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	apts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	svc, apts, _ := setupService()
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	a := newApartment(t, landlord.ID, "Oak")

	apts.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	apts.On("Delete", mock.Anything, a.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, testutil.Actor(landlord), a.ID))
	apts.AssertExpectations(t)
}

func TestService_Listings(t *testing.T) {
	svc, apts, _ := setupService()
	ctx := context.Background()
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	list := []*apartment.Apartment{newApartment(t, landlord.ID, "Elm"), newApartment(t, landlord.ID, "Oak")}

	apts.On("FindActive", mock.Anything).Return(list, nil)
	apts.On("FindByLandlord", mock.Anything, landlord.ID).Return(list[:1], nil)

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	mine, err := svc.ListMine(ctx, testutil.Actor(landlord))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Elm", mine[0].Name)

	_, err = svc.ListMine(ctx, testutil.Actor(testutil.NewTenant("Tom", "Oak")))
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
