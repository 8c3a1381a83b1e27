package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/complaint"
)

// ComplaintModel is the persistence model for complaint.Complaint
type ComplaintModel struct {
	AggregateModel
	TenantID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	TenantName    string           `gorm:"type:varchar(200)"`
	TenantEmail   string           `gorm:"type:varchar(200)"`
	LandlordID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ApartmentName string           `gorm:"type:varchar(200);not null;index"`
	Title         string           `gorm:"type:varchar(200);not null"`
	Description   string           `gorm:"type:text;not null"`
	Status        complaint.Status `gorm:"type:varchar(20);not null"`
	SubmittedAt   time.Time        `gorm:"not null"`
	ResolvedAt    *time.Time
	LandlordNotes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ComplaintModel) TableName() string {
	return "complaints"
}

// ToDomain converts the model to a domain complaint
func (m *ComplaintModel) ToDomain() *complaint.Complaint {
	return &complaint.Complaint{
		BaseAggregateRoot: m.ToAggregateRoot(),
		TenantID:          m.TenantID,
		TenantName:        m.TenantName,
		TenantEmail:       m.TenantEmail,
		LandlordID:        m.LandlordID,
		ApartmentName:     m.ApartmentName,
		Title:             m.Title,
		Description:       m.Description,
		Status:            m.Status,
		SubmittedAt:       m.SubmittedAt,
		ResolvedAt:        m.ResolvedAt,
		LandlordNotes:     m.LandlordNotes,
	}
}

// FromDomain populates the model from a domain complaint
func (m *ComplaintModel) FromDomain(c *complaint.Complaint) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.TenantID = c.TenantID
	m.TenantName = c.TenantName
	m.TenantEmail = c.TenantEmail
	m.LandlordID = c.LandlordID
	m.ApartmentName = c.ApartmentName
	m.Title = c.Title
	m.Description = c.Description
	m.Status = c.Status
	m.SubmittedAt = c.SubmittedAt
	m.ResolvedAt = c.ResolvedAt
	m.LandlordNotes = c.LandlordNotes
}
