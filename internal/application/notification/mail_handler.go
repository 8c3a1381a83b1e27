// Package notification turns domain events into tenant emails.
package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/tenancy/backend/internal/domain/billing"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/rules"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// Mail categories, used for provider-side filtering
const (
	CategoryBill      = "bill"
	CategoryPayment   = "payment"
	CategoryComplaint = "complaint"
	CategoryRules     = "rules"
)

// Outbox accepts mail for asynchronous delivery. Enqueue never blocks and
// reports false when the message was dropped.
type Outbox interface {
	Enqueue(msg mail.Message) bool
}

// MailHandler emails tenants about bills, payments, complaint updates and
// new house rules
type MailHandler struct {
	outbox   Outbox
	userRepo identity.UserRepository
	currency string
	logger   *zap.Logger
}

// NewMailHandler creates the handler. currency prefixes amounts, e.g. "KES ".
func NewMailHandler(outbox Outbox, userRepo identity.UserRepository, currency string, logger *zap.Logger) *MailHandler {
	return &MailHandler{
		outbox:   outbox,
		userRepo: userRepo,
		currency: currency,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *MailHandler) EventTypes() []string {
	return []string{
		billing.EventTypeBillGenerated,
		billing.EventTypeBillPaymentRecorded,
		complaint.EventTypeComplaintStatusChanged,
		rules.EventTypeRulesAdded,
	}
}

// Handle builds and enqueues the emails for one event. Delivery happens
// later; a full queue is logged, not returned.
func (h *MailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.BillGeneratedEvent:
		h.send(billGenerated(e, h.currency))
	case *billing.BillPaymentRecordedEvent:
		h.send(paymentRecorded(e, h.currency))
	case *complaint.StatusChangedEvent:
		h.send(complaintUpdated(e))
	case *rules.RulesAddedEvent:
		return h.rulesAdded(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	return nil
}

func (h *MailHandler) rulesAdded(ctx context.Context, e *rules.RulesAddedEvent) error {
	tenants, err := h.userRepo.FindByApartment(ctx, e.ApartmentName, identity.RoleTenant)
	if err != nil {
		return fmt.Errorf("load tenants of %s: %w", e.ApartmentName, err)
	}
	for _, t := range tenants {
		h.send(newRules(t, e))
	}
	h.logger.Debug("Rule notifications queued",
		zap.String("apartment", e.ApartmentName),
		zap.Int("recipients", len(tenants)))
	return nil
}

func (h *MailHandler) send(msg mail.Message) {
	if strings.TrimSpace(msg.To) == "" {
		h.logger.Debug("Skipping notification without recipient", zap.String("subject", msg.Subject))
		return
	}
	if !h.outbox.Enqueue(msg) {
		h.logger.Warn("Notification dropped",
			zap.String("to", msg.To),
			zap.String("category", msg.Category))
	}
}

func billGenerated(e *billing.BillGeneratedEvent, currency string) mail.Message {
	period := billing.Period{Month: e.Month, Year: e.Year}.String()
	text := fmt.Sprintf("Hello %s,\n\nYour rent bill for %s is ready.\nAmount: %s%s\nDue date: %s\n",
		e.TenantName, period, currency, e.Amount.StringFixed(2), e.DueDate.Format("2 January 2006"))
	return mail.Message{
		To:       e.TenantEmail,
		ToName:   e.TenantName,
		Subject:  "New bill for " + period,
		Text:     text,
		HTML:     paragraphs(text),
		Category: CategoryBill,
	}
}

func paymentRecorded(e *billing.BillPaymentRecordedEvent, currency string) mail.Message {
	period := billing.Period{Month: e.Month, Year: e.Year}.String()
	text := fmt.Sprintf("Hello %s,\n\nWe received your %s payment of %s%s for %s.\nRemaining balance: %s%s\nStatus: %s\n",
		e.TenantName, strings.ToLower(string(e.Method)), currency, e.Amount.StringFixed(2), period,
		currency, e.RemainingAmount.StringFixed(2), e.Status)
	return mail.Message{
		To:       e.TenantEmail,
		ToName:   e.TenantName,
		Subject:  "Payment received for " + period,
		Text:     text,
		HTML:     paragraphs(text),
		Category: CategoryPayment,
	}
}

func complaintUpdated(e *complaint.StatusChangedEvent) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour complaint %q is now %s.\n", e.TenantName, e.Title, e.Status)
	if e.LandlordNotes != "" {
		fmt.Fprintf(&b, "Landlord notes: %s\n", e.LandlordNotes)
	}
	return mail.Message{
		To:       e.TenantEmail,
		ToName:   e.TenantName,
		Subject:  "Complaint update: " + e.Title,
		Text:     b.String(),
		HTML:     paragraphs(b.String()),
		Category: CategoryComplaint,
	}
}

func newRules(tenant *identity.User, e *rules.RulesAddedEvent) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour landlord added new house rules for %s:\n", tenant.Name, e.ApartmentName)
	for _, r := range e.Rules {
		fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.Category, r.Description)
	}
	return mail.Message{
		To:       tenant.Email,
		ToName:   tenant.Name,
		Subject:  "New house rules for " + e.ApartmentName,
		Text:     b.String(),
		HTML:     paragraphs(b.String()),
		Category: CategoryRules,
	}
}

// paragraphs renders plain text as escaped HTML, one line per paragraph
func paragraphs(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}
