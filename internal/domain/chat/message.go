package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
)

// DuplicateWindow is how long an identical message is treated as a retry
const DuplicateWindow = 5 * time.Second

// MaxMessageLength bounds a single message body
const MaxMessageLength = 5000

// Participant is a point-in-time copy of a user on a message.
// Renaming a user later does not change stored messages.
type Participant struct {
	ID   uuid.UUID     `json:"id"`
	Name string        `json:"name"`
	Role identity.Role `json:"role"`
}

// Message is an immutable direct message inside one apartment
type Message struct {
	shared.BaseEntity
	Sender        Participant
	Receiver      Participant
	ApartmentName string
	Body          string
}

// NewMessage creates a message. Apartment checks are the caller's job.
func NewMessage(sender, receiver Participant, apartmentName, body string) (*Message, error) {
	body = NormalizeBody(body)
	if body == "" {
		return nil, shared.InvalidInput("Message cannot be empty")
	}
	if len(body) > MaxMessageLength {
		return nil, shared.InvalidInput("Message is too long")
	}
	if sender.ID == receiver.ID {
		return nil, shared.InvalidInput("Cannot send a message to yourself")
	}
	return &Message{
		BaseEntity:    shared.NewBaseEntity(),
		Sender:        sender,
		Receiver:      receiver,
		ApartmentName: strings.TrimSpace(apartmentName),
		Body:          body,
	}, nil
}

// NormalizeBody trims surrounding whitespace
func NormalizeBody(body string) string {
	return strings.TrimSpace(body)
}

// Involves reports whether the user is sender or receiver
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.Sender.ID == userID || m.Receiver.ID == userID
}

// Partner returns the other participant from userID's point of view
func (m *Message) Partner(userID uuid.UUID) Participant {
	if m.Sender.ID == userID {
		return m.Receiver
	}
	return m.Sender
}
