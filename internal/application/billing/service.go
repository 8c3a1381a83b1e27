// Package billing runs the rent ledger: monthly generation, payments,
// landlord edits, listings and the PDF documents rendered from bills.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Config holds ledger settings
type Config struct {
	// DueDay is the default day of month a generated bill falls due
	DueDay int
	// MaxAttempts bounds load-mutate-save cycles on version conflicts
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between cycles
	RetryBackoff time.Duration
}

// DefaultConfig returns default ledger settings
func DefaultConfig() Config {
	return Config{
		DueDay:       5,
		MaxAttempts:  5,
		RetryBackoff: 5 * time.Millisecond,
	}
}

// Service handles bill operations
type Service struct {
	billRepo  billing.BillRepository
	userRepo  identity.UserRepository
	publisher shared.EventPublisher
	metrics   *telemetry.DomainMetrics
	config    Config
	logger    *zap.Logger
}

// NewService creates a new billing service. metrics may be nil.
func NewService(
	billRepo billing.BillRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	metrics *telemetry.DomainMetrics,
	config Config,
	logger *zap.Logger,
) *Service {
	def := DefaultConfig()
	if config.DueDay <= 0 {
		config.DueDay = def.DueDay
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.RetryBackoff < 0 {
		config.RetryBackoff = 0
	}
	return &Service{
		billRepo:  billRepo,
		userRepo:  userRepo,
		publisher: publisher,
		metrics:   metrics,
		config:    config,
		logger:    logger,
	}
}

// GenerateMonthlyBills creates one bill per tenant of the landlord's
// apartment for the period. Tenants already billed for the period are
// skipped, so repeated runs are idempotent.
func (s *Service) GenerateMonthlyBills(ctx context.Context, actor policy.Actor, input GenerateInput) (result *GenerationResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_monthly",
		attribute.Int("billing.month", input.Month),
		attribute.Int("billing.year", input.Year))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	period := billing.Period{Month: input.Month, Year: input.Year}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	landlord, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.generateFor(ctx, landlord, period, input.DueDate)
}

func (s *Service) generateFor(ctx context.Context, landlord *identity.User, period billing.Period, dueDate *time.Time) (*GenerationResult, error) {
	if !landlord.RentAmount.IsPositive() {
		return nil, shared.InvalidInput("Set your rent amount before generating bills")
	}
	due := period.DefaultDueDate(s.config.DueDay)
	if dueDate != nil && !dueDate.IsZero() {
		due = *dueDate
	}

	tenants, err := s.userRepo.FindByApartment(ctx, landlord.ApartmentName, identity.RoleTenant)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, shared.NotFound("Tenants in this apartment")
	}

	landlordParty := billing.Party{ID: landlord.ID, Name: landlord.Name, Email: landlord.Email}
	result := &GenerationResult{Created: []BillResponse{}}
	var events []shared.DomainEvent

	for _, tenant := range tenants {
		exists, err := s.billRepo.ExistsForPeriod(ctx, tenant.ID, period)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		bill, err := billing.NewMonthlyBill(
			billing.Party{ID: tenant.ID, Name: tenant.Name, Email: tenant.Email},
			landlordParty,
			landlord.ApartmentName,
			landlord.RentAmount,
			period,
			due,
		)
		if err != nil {
			return nil, err
		}
		if err := s.billRepo.Create(ctx, bill); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		events = append(events, bill.GetDomainEvents()...)
		bill.ClearDomainEvents()
		result.Created = append(result.Created, ToBillResponse(bill))
	}

	s.metrics.BillsGenerated(ctx, len(result.Created))
	s.publish(ctx, events)

	s.logger.Info("Monthly bills generated",
		zap.String("landlord_id", landlord.ID.String()),
		zap.String("apartment", landlord.ApartmentName),
		zap.String("period", period.String()),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// GenerateForAllLandlords runs generation for the month containing now on
// behalf of every landlord. Landlords without tenants or rent are skipped;
// other failures are counted and reported together.
func (s *Service) GenerateForAllLandlords(ctx context.Context, now time.Time) (GenerationSummary, error) {
	period := billing.Period{Month: int(now.Month()), Year: now.Year()}
	summary := GenerationSummary{Period: period}

	landlords, err := s.userRepo.FindAllLandlords(ctx)
	if err != nil {
		return summary, err
	}

	var errs []error
	for _, landlord := range landlords {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !landlord.HasApartment() {
			continue
		}
		summary.Landlords++
		result, err := s.generateFor(ctx, landlord, period, nil)
		switch {
		case err == nil:
			summary.Created += len(result.Created)
			summary.Skipped += result.Skipped
		case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrInvalidInput):
			s.logger.Debug("Skipping landlord in scheduled generation",
				zap.String("landlord_id", landlord.ID.String()),
				zap.String("reason", err.Error()))
		default:
			summary.Failed++
			s.logger.Error("Scheduled generation failed for landlord",
				zap.String("landlord_id", landlord.ID.String()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	s.logger.Info("Scheduled bill generation finished",
		zap.String("period", period.String()),
		zap.Int("landlords", summary.Landlords),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	return summary, errors.Join(errs...)
}

// RecordCashPayment applies a tenant's cash payment to their own bill.
// Concurrent payments on the same bill are serialized by the version
// check and retried, so all of them land.
func (s *Service) RecordCashPayment(ctx context.Context, actor policy.Actor, billID uuid.UUID, amount decimal.Decimal) (resp *BillResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "record_cash_payment",
		attribute.String("bill.id", billID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := policy.RequireRole(actor, identity.RoleTenant); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.InvalidInput("Payment amount must be positive")
	}

	bill, err := s.mutate(ctx, billID,
		func(b *billing.Bill) error { return policy.CanPayBill(actor, b.TenantID) },
		func(b *billing.Bill) error { return b.ApplyPayment(amount, billing.PaymentMethodCash) },
	)
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(ctx, string(billing.PaymentMethodCash))
	s.logger.Info("Cash payment recorded",
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("remaining", bill.RemainingAmount.String()),
		zap.String("status", string(bill.Status)))

	out := ToBillResponse(bill)
	return &out, nil
}

// UpdateBill applies a landlord edit to a bill of their apartment
func (s *Service) UpdateBill(ctx context.Context, actor policy.Actor, billID uuid.UUID, input UpdateBillInput) (*BillResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	bill, err := s.mutate(ctx, billID,
		func(b *billing.Bill) error { return policy.CanManageApartmentRecord(actor, b.ApartmentName) },
		func(b *billing.Bill) error {
			return b.Revise(billing.Revision{
				Amount:      input.Amount,
				Description: input.Description,
				DueDate:     input.DueDate,
			})
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill updated",
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", bill.Amount.String()),
		zap.String("remaining", bill.RemainingAmount.String()))

	out := ToBillResponse(bill)
	return &out, nil
}

// mutate loads the bill, authorizes, mutates and saves it under the
// version check, reloading on conflict up to MaxAttempts times. Domain
// events raised by the successful attempt are published.
func (s *Service) mutate(ctx context.Context, billID uuid.UUID, authorize, apply func(*billing.Bill) error) (*billing.Bill, error) {
	for attempt := 1; ; attempt++ {
		bill, err := s.billRepo.FindByID(ctx, billID)
		if err != nil {
			return nil, err
		}
		if err := authorize(bill); err != nil {
			return nil, err
		}
		if err := apply(bill); err != nil {
			return nil, err
		}

		err = s.billRepo.SaveWithLock(ctx, bill)
		if err == nil {
			events := bill.GetDomainEvents()
			bill.ClearDomainEvents()
			s.publish(ctx, events)
			return bill, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}

		s.metrics.PaymentConflict(ctx)
		if attempt >= s.config.MaxAttempts {
			s.logger.Warn("Bill update gave up after version conflicts",
				zap.String("bill_id", billID.String()),
				zap.Int("attempts", attempt))
			return nil, err
		}
		s.logger.Debug("Bill version conflict, retrying",
			zap.String("bill_id", billID.String()),
			zap.Int("attempt", attempt))

		if s.config.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.config.RetryBackoff * time.Duration(attempt)):
			}
		}
	}
}

// GetBill returns one bill the actor may access
func (s *Service) GetBill(ctx context.Context, actor policy.Actor, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccessBill(actor, bill.TenantID, bill.ApartmentName); err != nil {
		return nil, err
	}
	out := ToBillResponse(bill)
	return &out, nil
}

// MyBills lists a tenant's bills, latest due date first
func (s *Service) MyBills(ctx context.Context, actor policy.Actor) ([]BillResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleTenant); err != nil {
		return nil, err
	}
	return s.find(ctx, billing.BillFilter{TenantID: &actor.ID, OrderBy: billing.OrderDueDateDesc})
}

// ApartmentBills lists every bill of a landlord's apartment, newest first
func (s *Service) ApartmentBills(ctx context.Context, actor policy.Actor) ([]BillResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, billing.BillFilter{ApartmentName: actor.ApartmentName, OrderBy: billing.OrderCreatedAtDesc})
}

// UnpaidBills lists bills not yet paid, earliest due date first
func (s *Service) UnpaidBills(ctx context.Context, actor policy.Actor) ([]BillResponse, error) {
	filter, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	filter.ExcludeStatus = []billing.BillStatus{billing.BillStatusPaid}
	filter.OrderBy = billing.OrderDueDateAsc
	return s.find(ctx, filter)
}

// PaidBills lists fully paid bills, latest payment first
func (s *Service) PaidBills(ctx context.Context, actor policy.Actor) ([]BillResponse, error) {
	filter, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	filter.Statuses = []billing.BillStatus{billing.BillStatusPaid}
	filter.OrderBy = billing.OrderPaymentDateDesc
	return s.find(ctx, filter)
}

// scopeFor limits tenants to their own bills and landlords to their
// apartment
func scopeFor(actor policy.Actor) (billing.BillFilter, error) {
	switch {
	case actor.IsTenant():
		id := actor.ID
		return billing.BillFilter{TenantID: &id}, nil
	case actor.IsLandlord():
		if err := policy.RequireApartment(actor); err != nil {
			return billing.BillFilter{}, err
		}
		return billing.BillFilter{ApartmentName: actor.ApartmentName}, nil
	}
	return billing.BillFilter{}, shared.ErrForbidden
}

func (s *Service) find(ctx context.Context, filter billing.BillFilter) ([]BillResponse, error) {
	bills, err := s.billRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToBillResponses(bills), nil
}

// publish hands events to the bus; delivery problems never fail the
// operation that raised them
func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish bill events", zap.Int("count", len(events)), zap.Error(err))
	}
}
