package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/identity"
)

// RegisterInput contains the fields of a new account
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PrimaryPhoneNumber   string
	SecondaryPhoneNumber string
	NationalID           string
	Role                 identity.Role
	// ApartmentName names the apartment a landlord creates
	ApartmentName string
	// ApartmentID selects the apartment a tenant joins
	ApartmentID  *uuid.UUID
	RentAmount   decimal.Decimal
	BuildingName string
	DateMovedIn  *time.Time
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Role                 identity.Role   `json:"role"`
	NationalID           string          `json:"nationalID"`
	PrimaryPhoneNumber   string          `json:"primaryPhoneNumber"`
	SecondaryPhoneNumber string          `json:"secondaryPhoneNumber,omitempty"`
	ApartmentName        string          `json:"apartmentName"`
	ApartmentID          *uuid.UUID      `json:"apartmentId,omitempty"`
	BuildingName         string          `json:"buildingName,omitempty"`
	DateMovedIn          *time.Time      `json:"dateMovedIn,omitempty"`
	RentAmount           decimal.Decimal `json:"rentAmount"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ToUserResponse converts a domain user, never exposing the password hash
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		Role:                 u.Role,
		NationalID:           u.NationalID,
		PrimaryPhoneNumber:   u.PrimaryPhoneNumber,
		SecondaryPhoneNumber: u.SecondaryPhoneNumber,
		ApartmentName:        u.ApartmentName,
		ApartmentID:          u.ApartmentID,
		BuildingName:         u.BuildingName,
		DateMovedIn:          u.DateMovedIn,
		RentAmount:           u.RentAmount,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
