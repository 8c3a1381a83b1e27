package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/identity"
)

// UserModel is the persistence model for identity.User
type UserModel struct {
	AggregateModel
	Name                 string          `gorm:"type:varchar(200);not null"`
	Email                string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash         string          `gorm:"type:varchar(255);not null"`
	PrimaryPhoneNumber   string          `gorm:"type:varchar(50)"`
	SecondaryPhoneNumber string          `gorm:"type:varchar(50)"`
	NationalID           string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Role                 identity.Role   `gorm:"type:varchar(20);not null;index"`
	ApartmentName        string          `gorm:"type:varchar(200);index"`
	ApartmentID          *uuid.UUID      `gorm:"type:uuid"`
	BuildingName         string          `gorm:"type:varchar(200)"`
	DateMovedIn          *time.Time
	RentAmount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Name:                 m.Name,
		Email:                m.Email,
		PasswordHash:         m.PasswordHash,
		PrimaryPhoneNumber:   m.PrimaryPhoneNumber,
		SecondaryPhoneNumber: m.SecondaryPhoneNumber,
		NationalID:           m.NationalID,
		Role:                 m.Role,
		ApartmentName:        m.ApartmentName,
		ApartmentID:          m.ApartmentID,
		BuildingName:         m.BuildingName,
		DateMovedIn:          m.DateMovedIn,
		RentAmount:           m.RentAmount,
	}
}

// FromDomain populates the model from a domain user
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.PrimaryPhoneNumber = u.PrimaryPhoneNumber
	m.SecondaryPhoneNumber = u.SecondaryPhoneNumber
	m.NationalID = u.NationalID
	m.Role = u.Role
	m.ApartmentName = u.ApartmentName
	m.ApartmentID = u.ApartmentID
	m.BuildingName = u.BuildingName
	m.DateMovedIn = u.DateMovedIn
	m.RentAmount = u.RentAmount
}

// UserModelFromDomain creates a model from a domain user
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
