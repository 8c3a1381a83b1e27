package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/billing"
)

// BillModel is the persistence model for billing.Bill.
// (tenant_id, month, year) is unique so generation cannot double-bill.
type BillModel struct {
	AggregateModel
	TenantID        uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_bills_tenant_period"`
	TenantName      string                 `gorm:"type:varchar(200)"`
	TenantEmail     string                 `gorm:"type:varchar(200)"`
	LandlordID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	LandlordName    string                 `gorm:"type:varchar(200)"`
	ApartmentName   string                 `gorm:"type:varchar(200);not null;index"`
	Amount          decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Status          billing.BillStatus     `gorm:"type:varchar(20);not null;index"`
	DueDate         time.Time              `gorm:"not null"`
	Month           int                    `gorm:"not null;uniqueIndex:idx_bills_tenant_period"`
	Year            int                    `gorm:"not null;uniqueIndex:idx_bills_tenant_period"`
	Description     string                 `gorm:"type:text"`
	PaymentDate     *time.Time
	PaymentMethod   billing.PaymentMethod  `gorm:"type:varchar(20)"`
	PaymentHistory  billing.PaymentRecords `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the model to a domain bill
func (m *BillModel) ToDomain() *billing.Bill {
	history := m.PaymentHistory
	if history == nil {
		history = billing.PaymentRecords{}
	}
	return &billing.Bill{
		BaseAggregateRoot: m.ToAggregateRoot(),
		TenantID:          m.TenantID,
		TenantName:        m.TenantName,
		TenantEmail:       m.TenantEmail,
		LandlordID:        m.LandlordID,
		LandlordName:      m.LandlordName,
		ApartmentName:     m.ApartmentName,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		RemainingAmount:   m.RemainingAmount,
		Status:            m.Status,
		DueDate:           m.DueDate,
		Month:             m.Month,
		Year:              m.Year,
		Description:       m.Description,
		PaymentDate:       m.PaymentDate,
		PaymentMethod:     m.PaymentMethod,
		PaymentHistory:    history,
	}
}

// FromDomain populates the model from a domain bill
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.TenantID = b.TenantID
	m.TenantName = b.TenantName
	m.TenantEmail = b.TenantEmail
	m.LandlordID = b.LandlordID
	m.LandlordName = b.LandlordName
	m.ApartmentName = b.ApartmentName
	m.Amount = b.Amount
	m.PaidAmount = b.PaidAmount
	m.RemainingAmount = b.RemainingAmount
	m.Status = b.Status
	m.DueDate = b.DueDate
	m.Month = b.Month
	m.Year = b.Year
	m.Description = b.Description
	m.PaymentDate = b.PaymentDate
	m.PaymentMethod = b.PaymentMethod
	m.PaymentHistory = b.PaymentHistory
}

// BillModelFromDomain creates a model from a domain bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}
