package rules

import (
	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/shared"
)

// EventTypeRulesAdded is published when a landlord adds rules
const EventTypeRulesAdded = "RulesAdded"

// RulesAddedEvent carries the rules appended in one call
type RulesAddedEvent struct {
	shared.BaseDomainEvent
	LandlordID    uuid.UUID `json:"landlord_id"`
	ApartmentName string    `json:"apartment_name"`
	Rules         []Rule    `json:"rules"`
}

// NewRulesAddedEvent creates a RulesAddedEvent
func NewRulesAddedEvent(b *RuleBook, added []Rule) *RulesAddedEvent {
	return &RulesAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRulesAdded, "RuleBook", b.ID),
		LandlordID:      b.LandlordID,
		ApartmentName:   b.ApartmentName,
		Rules:           added,
	}
}
