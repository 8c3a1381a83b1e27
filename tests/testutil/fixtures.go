package testutil

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plaintext password of every fixture user
const FixturePassword = "secret123"

var fixtureHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// NewLandlord builds a persisted-looking landlord without paying for a
// production bcrypt cost
func NewLandlord(name, apartmentName string, rent int64) *identity.User {
	u := newUser(name, identity.RoleLandlord, apartmentName)
	u.RentAmount = decimal.NewFromInt(rent)
	return u
}

// NewTenant builds a tenant living in apartmentName
func NewTenant(name, apartmentName string) *identity.User {
	u := newUser(name, identity.RoleTenant, apartmentName)
	aptID := NewTestUUID("apartment:" + strings.ToLower(apartmentName))
	u.ApartmentID = &aptID
	u.RentAmount = decimal.Zero
	return u
}

// Actor returns the policy actor of u
func Actor(u *identity.User) policy.Actor {
	return policy.ActorFromUser(u)
}

func newUser(name string, role identity.Role, apartmentName string) *identity.User {
	moved := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &identity.User{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		Email:              strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash:       fixtureHash,
		PrimaryPhoneNumber: "0700000000",
		NationalID:         uuid.NewString()[:8],
		Role:               role,
		ApartmentName:      apartmentName,
		DateMovedIn:        &moved,
	}
}
