package rules

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/shared"
)

// Category groups house rules
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryPayment     Category = "payment"
	CategoryNoise       Category = "noise"
	CategoryGuests      Category = "guests"
	CategoryPets        Category = "pets"
	CategoryMaintenance Category = "maintenance"
)

// IsValid checks the category against the enum
func (c Category) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryPayment, CategoryNoise, CategoryGuests, CategoryPets, CategoryMaintenance:
		return true
	}
	return false
}

// Rule is a single house rule with a stable id
type Rule struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// RuleList is stored as a JSONB array
type RuleList []Rule

// Value implements driver.Valuer
func (l RuleList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *RuleList) Scan(value any) error {
	if value == nil {
		*l = RuleList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RuleList: unsupported type")
	}
	if len(bytes) == 0 {
		*l = RuleList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Draft is the input for a new rule or a full replacement
type Draft struct {
	Title       string
	Description string
	Category    Category
}

func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" || d.Description == "" {
		return d, shared.InvalidInput("Rule title and description are required")
	}
	if d.Category == "" {
		d.Category = CategoryGeneral
	}
	if !d.Category.IsValid() {
		return d, shared.InvalidInput("Invalid rule category: " + string(d.Category))
	}
	return d, nil
}

// RuleBook is the ordered rule list a landlord keeps for one apartment
type RuleBook struct {
	shared.BaseAggregateRoot
	LandlordID    uuid.UUID
	ApartmentName string
	Rules         RuleList
}

// NewRuleBook creates an empty rule book
func NewRuleBook(landlordID uuid.UUID, apartmentName string) *RuleBook {
	return &RuleBook{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LandlordID:        landlordID,
		ApartmentName:     strings.TrimSpace(apartmentName),
		Rules:             RuleList{},
	}
}

// Add appends rules in order. Either all drafts are valid and appended or
// none are.
func (b *RuleBook) Add(drafts ...Draft) ([]Rule, error) {
	if len(drafts) == 0 {
		return nil, shared.InvalidInput("At least one rule is required")
	}
	now := time.Now()
	added := make([]Rule, 0, len(drafts))
	for _, d := range drafts {
		n, err := d.normalize()
		if err != nil {
			return nil, err
		}
		added = append(added, Rule{
			ID:          uuid.New(),
			Title:       n.Title,
			Description: n.Description,
			Category:    n.Category,
			CreatedAt:   now,
		})
	}
	b.Rules = append(b.Rules, added...)
	b.touch(now)
	b.AddDomainEvent(NewRulesAddedEvent(b, added))
	return added, nil
}

// RulePatch is a partial edit of one rule
type RulePatch struct {
	Title       *string
	Description *string
	Category    *Category
}

// Edit applies a patch to the rule with the given id
func (b *RuleBook) Edit(ruleID uuid.UUID, p RulePatch) (Rule, error) {
	i := b.indexOf(ruleID)
	if i < 0 {
		return Rule{}, shared.NotFound("Rule")
	}
	r := b.Rules[i]
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	n, err := Draft{Title: r.Title, Description: r.Description, Category: r.Category}.normalize()
	if err != nil {
		return Rule{}, err
	}
	r.Title, r.Description, r.Category = n.Title, n.Description, n.Category
	b.Rules[i] = r
	b.touch(time.Now())
	return r, nil
}

// Remove deletes the rule with the given id, keeping the order of the rest
func (b *RuleBook) Remove(ruleID uuid.UUID) error {
	i := b.indexOf(ruleID)
	if i < 0 {
		return shared.NotFound("Rule")
	}
	b.Rules = append(b.Rules[:i:i], b.Rules[i+1:]...)
	b.touch(time.Now())
	return nil
}

// Contains reports whether a rule with the id exists
func (b *RuleBook) Contains(ruleID uuid.UUID) bool {
	return b.indexOf(ruleID) >= 0
}

func (b *RuleBook) indexOf(ruleID uuid.UUID) int {
	for i, r := range b.Rules {
		if r.ID == ruleID {
			return i
		}
	}
	return -1
}

func (b *RuleBook) touch(now time.Time) {
	b.UpdatedAt = now
	b.IncrementVersion()
}
