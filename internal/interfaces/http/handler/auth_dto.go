package handler

// RegisterRequest is the body of POST /auth/register. Landlords name the
// apartment they manage; tenants pick an existing one by id.
type RegisterRequest struct {
	Name                 string   `json:"name" binding:"required,notblank,max=100"`
	Email                string   `json:"email" binding:"required,email,max=200"`
	Password             string   `json:"password" binding:"required,min=6,maxbytes=72"`
	NationalID           string   `json:"nationalID" binding:"required,notblank,max=50"`
	PrimaryPhoneNumber   string   `json:"primaryPhoneNumber" binding:"required,notblank,max=30"`
	SecondaryPhoneNumber string   `json:"secondaryPhoneNumber" binding:"omitempty,max=30"`
	Role                 string   `json:"role" binding:"required,oneof=Tenant Landlord"`
	ApartmentName        string   `json:"apartmentName" binding:"omitempty,max=100"`
	ApartmentID          string   `json:"apartmentId" binding:"omitempty,uuid"`
	RentAmount           *float64 `json:"rentAmount" binding:"omitempty,gte=0"`
	BuildingName         string   `json:"buildingName" binding:"omitempty,max=100"`
	DateMovedIn          string   `json:"dateMovedIn"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RentAmountRequest is the body of PUT /users/rent-amount
type RentAmountRequest struct {
	RentAmount float64 `json:"rentAmount" binding:"gt=0"`
}
