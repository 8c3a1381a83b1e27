// Package chat handles direct messages between a landlord and the tenants
// of one apartment.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Notifier pushes persisted messages to live connections
type Notifier interface {
	MessageCreated(m *chat.Message)
}

// Service handles chat operations
type Service struct {
	repo     chat.Repository
	userRepo identity.UserRepository
	notifier Notifier
	metrics  *telemetry.DomainMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new chat service. notifier and metrics may be nil.
func NewService(repo chat.Repository, userRepo identity.UserRepository, notifier Notifier, metrics *telemetry.DomainMetrics, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNotifier attaches the live hub after construction. The hub needs the
// service to persist socket sends, so one of the two is wired late.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateMessage stores a message between two users of the same apartment.
// An identical message from the same sender to the same receiver within
// chat.DuplicateWindow is returned as is with created=false.
func (s *Service) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (resp *MessageResponse, created bool, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "chat", "create_message",
		attribute.String("chat.sender_id", senderID.String()),
		attribute.String("chat.receiver_id", receiverID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	sender, err := s.loadUser(ctx, senderID, "Sender")
	if err != nil {
		return nil, false, err
	}
	receiver, err := s.loadUser(ctx, receiverID, "Receiver")
	if err != nil {
		return nil, false, err
	}

	body := chat.NormalizeBody(content)
	if body == "" {
		return nil, false, shared.InvalidInput("Message cannot be empty")
	}
	if err := policy.CanChat(policy.ActorFromUser(sender), policy.ActorFromUser(receiver)); err != nil {
		return nil, false, err
	}

	dup, err := s.repo.FindRecentDuplicate(ctx, sender.ID, receiver.ID, body, s.now().Add(-chat.DuplicateWindow))
	switch {
	case err == nil:
		s.logger.Debug("Duplicate chat message suppressed", zap.String("message_id", dup.ID.String()))
		out := ToMessageResponse(dup)
		return &out, false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, err
	}

	msg, err := chat.NewMessage(participant(sender), participant(receiver), sender.ApartmentName, body)
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, false, err
	}

	if s.notifier != nil {
		s.notifier.MessageCreated(msg)
	}
	s.metrics.MessageSent(ctx)

	out := ToMessageResponse(msg)
	return &out, true, nil
}

// SendChat persists a message sent over a live connection
func (s *Service) SendChat(ctx context.Context, senderID, receiverID uuid.UUID, content string) error {
	_, _, err := s.CreateMessage(ctx, senderID, receiverID, content)
	return err
}

// MyMessages lists the actor's messages in their apartment, oldest first
func (s *Service) MyMessages(ctx context.Context, actor policy.Actor) ([]MessageResponse, error) {
	msgs, err := s.messagesFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return ToMessageResponses(msgs), nil
}

// Conversations groups the actor's messages by partner, most recently
// active first
func (s *Service) Conversations(ctx context.Context, actor policy.Actor) ([]ConversationResponse, error) {
	msgs, err := s.messagesFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return toConversationResponses(chat.Conversations(actor.ID, msgs)), nil
}

// Partners lists who the actor may message: tenants for a landlord,
// landlords for a tenant
func (s *Service) Partners(ctx context.Context, actor policy.Actor) ([]PartnerResponse, error) {
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByApartment(ctx, actor.ApartmentName, policy.PartnerRole(actor))
	if err != nil {
		return nil, err
	}
	out := make([]PartnerResponse, 0, len(users))
	for _, u := range users {
		if u.ID == actor.ID {
			continue
		}
		out = append(out, PartnerResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return out, nil
}

// Conversation lists the messages between a and b, oldest first. The
// actor must be one of the two.
func (s *Service) Conversation(ctx context.Context, actor policy.Actor, a, b uuid.UUID) ([]MessageResponse, error) {
	if actor.ID != a && actor.ID != b {
		return nil, shared.Forbidden("You can only read your own conversations")
	}
	msgs, err := s.repo.FindBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return ToMessageResponses(msgs), nil
}

func (s *Service) messagesFor(ctx context.Context, actor policy.Actor) ([]*chat.Message, error) {
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	return s.repo.FindForUser(ctx, actor.ID, actor.ApartmentName)
}

func (s *Service) loadUser(ctx context.Context, id uuid.UUID, what string) (*identity.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound(what)
		}
		return nil, err
	}
	return u, nil
}

func participant(u *identity.User) chat.Participant {
	return chat.Participant{ID: u.ID, Name: u.Name, Role: u.Role}
}
