package apartment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApartment(t *testing.T) {
	landlordID := uuid.New()

	t.Run("applies defaults", func(t *testing.T) {
		a, err := NewApartment(landlordID, "Lee", Details{Name: " Oak Court ", RentAmount: decimal.NewFromInt(1200)})

		require.NoError(t, err)
		assert.Equal(t, "Oak Court", a.Name)
		assert.Equal(t, DefaultMaxTenants, a.MaxTenants)
		assert.Equal(t, 0, a.CurrentTenants)
		assert.True(t, a.IsActive)
		assert.Equal(t, landlordID, a.LandlordID)
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := NewApartment(landlordID, "Lee", Details{})
		assert.ErrorContains(t, err, "name is required")
	})

	t.Run("requires landlord", func(t *testing.T) {
		_, err := NewApartment(uuid.Nil, "Lee", Details{Name: "Oak"})
		assert.ErrorContains(t, err, "Landlord is required")
	})

	t.Run("rejects negative rent", func(t *testing.T) {
		_, err := NewApartment(landlordID, "Lee", Details{Name: "Oak", RentAmount: decimal.NewFromInt(-5)})
		assert.Error(t, err)
	})
}

func TestApartment_Apply(t *testing.T) {
	a, err := NewApartment(uuid.New(), "Lee", Details{Name: "Oak"})
	require.NoError(t, err)

	name := "Pine"
	inactive := false
	maxTenants := 2
	require.NoError(t, a.Apply(Update{Name: &name, IsActive: &inactive, MaxTenants: &maxTenants}))

	assert.Equal(t, "Pine", a.Name)
	assert.False(t, a.IsActive)
	assert.Equal(t, 2, a.Version)

	blank := " "
	assert.Error(t, a.Apply(Update{Name: &blank}))
}

func TestApartment_IsFullIsAdvisory(t *testing.T) {
	a, err := NewApartment(uuid.New(), "Lee", Details{Name: "Oak", MaxTenants: 1})
	require.NoError(t, err)

	a.CurrentTenants = 3
	assert.True(t, a.IsFull())
}
