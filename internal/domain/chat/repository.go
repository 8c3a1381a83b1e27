package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for message persistence
type Repository interface {
	Create(ctx context.Context, m *Message) error

	// FindRecentDuplicate returns the newest message with the same sender,
	// receiver and body created at or after since, or shared.ErrNotFound
	FindRecentDuplicate(ctx context.Context, senderID, receiverID uuid.UUID, body string, since time.Time) (*Message, error)

	// FindForUser lists messages in the apartment that involve the user,
	// oldest first
	FindForUser(ctx context.Context, userID uuid.UUID, apartmentName string) ([]*Message, error)

	// FindBetween lists messages exchanged by two users, oldest first
	FindBetween(ctx context.Context, a, b uuid.UUID) ([]*Message, error)
}
