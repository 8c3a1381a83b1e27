package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/identity"
)

// MessageResponse is the public view of a chat message
type MessageResponse struct {
	ID            uuid.UUID     `json:"id"`
	SenderID      uuid.UUID     `json:"senderId"`
	SenderName    string        `json:"senderName"`
	SenderRole    identity.Role `json:"senderRole"`
	ReceiverID    uuid.UUID     `json:"receiverId"`
	ReceiverName  string        `json:"receiverName"`
	ReceiverRole  identity.Role `json:"receiverRole"`
	ApartmentName string        `json:"apartmentName"`
	Message       string        `json:"message"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// PartnerResponse is someone the caller may chat with
type PartnerResponse struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email,omitempty"`
	Role  identity.Role `json:"role"`
}

// ConversationResponse summarises the exchange with one partner
type ConversationResponse struct {
	Partner      PartnerResponse `json:"partner"`
	LastMessage  MessageResponse `json:"lastMessage"`
	MessageCount int             `json:"messageCount"`
}

// ToMessageResponse converts a domain message
func ToMessageResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		SenderID:      m.Sender.ID,
		SenderName:    m.Sender.Name,
		SenderRole:    m.Sender.Role,
		ReceiverID:    m.Receiver.ID,
		ReceiverName:  m.Receiver.Name,
		ReceiverRole:  m.Receiver.Role,
		ApartmentName: m.ApartmentName,
		Message:       m.Body,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMessageResponses converts messages keeping their order
func ToMessageResponses(list []*chat.Message) []MessageResponse {
	out := make([]MessageResponse, len(list))
	for i, m := range list {
		out[i] = ToMessageResponse(m)
	}
	return out
}

func toConversationResponses(list []chat.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, len(list))
	for i, c := range list {
		out[i] = ConversationResponse{
			Partner:      PartnerResponse{ID: c.Partner.ID, Name: c.Partner.Name, Role: c.Partner.Role},
			LastMessage:  ToMessageResponse(c.LastMessage),
			MessageCount: c.MessageCount,
		}
	}
	return out
}
