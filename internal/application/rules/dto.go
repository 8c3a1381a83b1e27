package rules

import (
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/rules"
)

// RuleInput is one rule to add
type RuleInput struct {
	Title       string
	Description string
	Category    rules.Category
}

// RulePatchInput is a partial rule edit; nil fields are unchanged
type RulePatchInput struct {
	Title       *string
	Description *string
	Category    *rules.Category
}

// RuleResponse is the public view of a rule
type RuleResponse struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    rules.Category `json:"category"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// RuleBookResponse is an apartment's rule list. ID is nil when the
// apartment has no rules yet.
type RuleBookResponse struct {
	ID            *uuid.UUID     `json:"id,omitempty"`
	LandlordID    *uuid.UUID     `json:"landlordId,omitempty"`
	ApartmentName string         `json:"apartmentName"`
	Rules         []RuleResponse `json:"rules"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
}

// ToRuleResponse converts a domain rule
func ToRuleResponse(r rules.Rule) RuleResponse {
	return RuleResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRuleResponses converts rules keeping their order
func ToRuleResponses(list []rules.Rule) []RuleResponse {
	out := make([]RuleResponse, len(list))
	for i, r := range list {
		out[i] = ToRuleResponse(r)
	}
	return out
}

// ToRuleBookResponse converts a domain rule book
func ToRuleBookResponse(b *rules.RuleBook) RuleBookResponse {
	id, landlordID, updated := b.ID, b.LandlordID, b.UpdatedAt
	return RuleBookResponse{
		ID:            &id,
		LandlordID:    &landlordID,
		ApartmentName: b.ApartmentName,
		Rules:         ToRuleResponses(b.Rules),
		UpdatedAt:     &updated,
	}
}

// mergeRuleBooks combines books in the given order. The caller's own book,
// if any, names the result; otherwise the first book does.
func mergeRuleBooks(books []*rules.RuleBook, callerID uuid.UUID) RuleBookResponse {
	primary := books[0]
	for _, b := range books {
		if b.LandlordID == callerID {
			primary = b
			break
		}
	}
	resp := ToRuleBookResponse(primary)
	if len(books) == 1 {
		return resp
	}

	updated := primary.UpdatedAt
	resp.Rules = make([]RuleResponse, 0)
	for _, b := range books {
		resp.Rules = append(resp.Rules, ToRuleResponses(b.Rules)...)
		if b.UpdatedAt.After(updated) {
			updated = b.UpdatedAt
		}
	}
	resp.UpdatedAt = &updated
	return resp
}

func emptyRuleBook(apartmentName string) RuleBookResponse {
	return RuleBookResponse{ApartmentName: apartmentName, Rules: []RuleResponse{}}
}
