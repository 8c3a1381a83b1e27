package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role distinguishes the two kinds of account
type Role string

const (
	RoleTenant   Role = "Tenant"
	RoleLandlord Role = "Landlord"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleTenant || r == RoleLandlord
}

// Password cost for bcrypt
var bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a tenant or landlord account.
// ApartmentName is the join key used for apartment scoping and is compared
// case-insensitively; ApartmentID is only required for tenants.
type User struct {
	shared.BaseAggregateRoot
	Name                 string
	Email                string
	PasswordHash         string
	PrimaryPhoneNumber   string
	SecondaryPhoneNumber string
	NationalID           string
	Role                 Role
	ApartmentName        string
	ApartmentID          *uuid.UUID
	BuildingName         string
	DateMovedIn          *time.Time
	RentAmount           decimal.Decimal
}

// Profile holds the registration fields shared by both roles
type Profile struct {
	Name                 string
	Email                string
	Password             string
	PrimaryPhoneNumber   string
	SecondaryPhoneNumber string
	NationalID           string
	BuildingName         string
	DateMovedIn          *time.Time
}

// NewLandlord creates a landlord account owning the named apartment
func NewLandlord(p Profile, apartmentName string, rentAmount decimal.Decimal) (*User, error) {
	apartmentName = strings.TrimSpace(apartmentName)
	if apartmentName == "" {
		return nil, shared.InvalidInput("Apartment name is required")
	}
	if !rentAmount.IsPositive() {
		return nil, shared.InvalidInput("Rent amount is required for landlords")
	}
	u, err := newUser(p, RoleLandlord)
	if err != nil {
		return nil, err
	}
	u.ApartmentName = apartmentName
	u.RentAmount = rentAmount
	return u, nil
}

// NewTenant creates a tenant account living in the given apartment.
// The apartment name is copied from the apartment record, not from input.
func NewTenant(p Profile, apartmentID uuid.UUID, apartmentName string) (*User, error) {
	if apartmentID == uuid.Nil {
		return nil, shared.InvalidInput("Apartment is required for tenants")
	}
	u, err := newUser(p, RoleTenant)
	if err != nil {
		return nil, err
	}
	u.ApartmentID = &apartmentID
	u.ApartmentName = strings.TrimSpace(apartmentName)
	u.RentAmount = decimal.Zero
	return u, nil
}

func newUser(p Profile, role Role) (*User, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, shared.InvalidInput("Name is required")
	}
	email := NormalizeEmail(p.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	nationalID := strings.TrimSpace(p.NationalID)
	if nationalID == "" {
		return nil, shared.InvalidInput("National ID is required")
	}
	if err := validatePassword(p.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(p.Password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 name,
		Email:                email,
		PasswordHash:         hash,
		PrimaryPhoneNumber:   strings.TrimSpace(p.PrimaryPhoneNumber),
		SecondaryPhoneNumber: strings.TrimSpace(p.SecondaryPhoneNumber),
		NationalID:           nationalID,
		Role:                 role,
		BuildingName:         strings.TrimSpace(p.BuildingName),
		DateMovedIn:          p.DateMovedIn,
	}, nil
}

// IsLandlord reports whether the user is a landlord
func (u *User) IsLandlord() bool {
	return u.Role == RoleLandlord
}

// IsTenant reports whether the user is a tenant
func (u *User) IsTenant() bool {
	return u.Role == RoleTenant
}

// HasApartment reports whether the user is attached to an apartment
func (u *User) HasApartment() bool {
	return strings.TrimSpace(u.ApartmentName) != ""
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRentAmount sets the landlord's baseline rent used for bill generation
func (u *User) SetRentAmount(amount decimal.Decimal) error {
	if !u.IsLandlord() {
		return shared.Forbidden("Only landlords can set rent amount")
	}
	if !amount.IsPositive() {
		return shared.InvalidInput("Rent amount must be positive")
	}
	u.RentAmount = amount
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError(shared.CodeInvalidPassword, "Password cannot be empty")
	}
	if utf8.RuneCountInString(password) < 6 {
		return shared.NewDomainError(shared.CodeInvalidPassword, "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError(shared.CodeInvalidPassword, "Password cannot exceed 72 bytes")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError(shared.CodeInvalidEmail, "Email is required")
	}
	if len(email) > 200 {
		return shared.NewDomainError(shared.CodeInvalidEmail, "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError(shared.CodeInvalidEmail, "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
