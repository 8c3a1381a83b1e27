package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/apartment"
)

// ApartmentModel is the persistence model for apartment.Apartment
type ApartmentModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	LandlordID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LandlordName   string          `gorm:"type:varchar(200)"`
	RentAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Location       string          `gorm:"type:varchar(500)"`
	Description    string          `gorm:"type:text"`
	MaxTenants     int             `gorm:"not null;default:10"`
	CurrentTenants int             `gorm:"not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ApartmentModel) TableName() string {
	return "apartments"
}

// ToDomain converts the model to a domain apartment
func (m *ApartmentModel) ToDomain() *apartment.Apartment {
	return &apartment.Apartment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		LandlordID:        m.LandlordID,
		LandlordName:      m.LandlordName,
		RentAmount:        m.RentAmount,
		Location:          m.Location,
		Description:       m.Description,
		MaxTenants:        m.MaxTenants,
		CurrentTenants:    m.CurrentTenants,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the model from a domain apartment
func (m *ApartmentModel) FromDomain(a *apartment.Apartment) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.LandlordID = a.LandlordID
	m.LandlordName = a.LandlordName
	m.RentAmount = a.RentAmount
	m.Location = a.Location
	m.Description = a.Description
	m.MaxTenants = a.MaxTenants
	m.CurrentTenants = a.CurrentTenants
	m.IsActive = a.IsActive
}

// ApartmentModelFromDomain creates a model from a domain apartment
func ApartmentModelFromDomain(a *apartment.Apartment) *ApartmentModel {
	m := &ApartmentModel{}
	m.FromDomain(a)
	return m
}
