package models

import (
	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/rules"
)

// RuleBookModel is the persistence model for rules.RuleBook. Rules are kept
// in a single jsonb column to preserve their order.
type RuleBookModel struct {
	AggregateModel
	LandlordID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_rule_books_owner"`
	ApartmentName string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_rule_books_owner"`
	Rules         rules.RuleList `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (RuleBookModel) TableName() string {
	return "rule_books"
}

// ToDomain converts the model to a domain rule book
func (m *RuleBookModel) ToDomain() *rules.RuleBook {
	list := m.Rules
	if list == nil {
		list = rules.RuleList{}
	}
	return &rules.RuleBook{
		BaseAggregateRoot: m.ToAggregateRoot(),
		LandlordID:        m.LandlordID,
		ApartmentName:     m.ApartmentName,
		Rules:             list,
	}
}

// FromDomain populates the model from a domain rule book
func (m *RuleBookModel) FromDomain(b *rules.RuleBook) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.LandlordID = b.LandlordID
	m.ApartmentName = b.ApartmentName
	m.Rules = b.Rules
}
