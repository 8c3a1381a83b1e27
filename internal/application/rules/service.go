// Package rules manages the house rules a landlord publishes for their
// apartment.
package rules

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/rules"
	"github.com/tenancy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// saveAttempts bounds reload-and-retry cycles on version conflicts
const saveAttempts = 3

// Service handles rule book operations
type Service struct {
	repo      rules.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new rules service
func NewService(repo rules.Repository, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// AddRules appends rules to the landlord's rule book, creating the book on
// first use
func (s *Service) AddRules(ctx context.Context, actor policy.Actor, inputs []RuleInput) ([]RuleResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	drafts := make([]rules.Draft, len(inputs))
	for i, in := range inputs {
		drafts[i] = rules.Draft{Title: in.Title, Description: in.Description, Category: in.Category}
	}

	var added []rules.Rule
	book, err := s.withRetry(ctx, func() (*rules.RuleBook, error) {
		book, err := s.repo.FindByLandlordAndApartment(ctx, actor.ID, actor.ApartmentName)
		if errors.Is(err, shared.ErrNotFound) {
			return rules.NewRuleBook(actor.ID, actor.ApartmentName), nil
		}
		return book, err
	}, func(book *rules.RuleBook) error {
		var err error
		added, err = book.Add(drafts...)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, book)
	s.logger.Info("Rules added",
		zap.String("rule_book_id", book.ID.String()),
		zap.String("apartment", book.ApartmentName),
		zap.Int("added", len(added)),
		zap.Int("total", len(book.Rules)))

	return ToRuleResponses(added), nil
}

// GetRules returns the rules of the actor's apartment. When several
// landlords keep a book for the apartment their rules are combined, oldest
// book first. The list is empty when nobody has published any.
func (s *Service) GetRules(ctx context.Context, actor policy.Actor) (*RuleBookResponse, error) {
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	books, err := s.repo.FindByApartment(ctx, actor.ApartmentName)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		resp := emptyRuleBook(actor.ApartmentName)
		return &resp, nil
	}
	resp := mergeRuleBooks(books, actor.ID)
	return &resp, nil
}

// UpdateRule edits one rule of the landlord's own rule book
func (s *Service) UpdateRule(ctx context.Context, actor policy.Actor, ruleID uuid.UUID, input RulePatchInput) (*RuleResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}

	var edited rules.Rule
	_, err := s.withRetry(ctx, s.ownedBook(ctx, actor, ruleID), func(book *rules.RuleBook) error {
		var err error
		edited, err = book.Edit(ruleID, rules.RulePatch{
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := ToRuleResponse(edited)
	return &resp, nil
}

// DeleteRule removes one rule of the landlord's own rule book
func (s *Service) DeleteRule(ctx context.Context, actor policy.Actor, ruleID uuid.UUID) error {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return err
	}
	book, err := s.withRetry(ctx, s.ownedBook(ctx, actor, ruleID), func(book *rules.RuleBook) error {
		return book.Remove(ruleID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Rule deleted",
		zap.String("rule_book_id", book.ID.String()),
		zap.String("rule_id", ruleID.String()))
	return nil
}

func (s *Service) ownedBook(ctx context.Context, actor policy.Actor, ruleID uuid.UUID) func() (*rules.RuleBook, error) {
	return func() (*rules.RuleBook, error) {
		book, err := s.repo.FindByRuleID(ctx, ruleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NotFound("Rule")
			}
			return nil, err
		}
		if book.LandlordID != actor.ID {
			return nil, shared.Forbidden("You can only change your own rules")
		}
		return book, nil
	}
}

// withRetry loads, mutates and saves a rule book, reloading when another
// writer saved first
func (s *Service) withRetry(ctx context.Context, load func() (*rules.RuleBook, error), apply func(*rules.RuleBook) error) (*rules.RuleBook, error) {
	for attempt := 1; ; attempt++ {
		book, err := load()
		if err != nil {
			return nil, err
		}
		if err := apply(book); err != nil {
			return nil, err
		}
		err = s.repo.Save(ctx, book)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= saveAttempts {
			return nil, err
		}
		s.logger.Debug("Rule book version conflict, retrying", zap.Int("attempt", attempt))
	}
}

func (s *Service) publish(ctx context.Context, book *rules.RuleBook) {
	events := book.GetDomainEvents()
	book.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish rule events", zap.Error(err))
	}
}
