package models

import (
	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/identity"
)

// ChatMessageModel is the persistence model for chat.Message
type ChatMessageModel struct {
	BaseModel
	SenderID      uuid.UUID     `gorm:"type:uuid;not null;index:idx_chat_pair"`
	SenderName    string        `gorm:"type:varchar(200)"`
	SenderRole    identity.Role `gorm:"type:varchar(20)"`
	ReceiverID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_chat_pair"`
	ReceiverName  string        `gorm:"type:varchar(200)"`
	ReceiverRole  identity.Role `gorm:"type:varchar(20)"`
	ApartmentName string        `gorm:"type:varchar(200);not null;index"`
	Body          string        `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the model to a domain message
func (m *ChatMessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		BaseEntity:    m.BaseModel.ToDomain(),
		Sender:        chat.Participant{ID: m.SenderID, Name: m.SenderName, Role: m.SenderRole},
		Receiver:      chat.Participant{ID: m.ReceiverID, Name: m.ReceiverName, Role: m.ReceiverRole},
		ApartmentName: m.ApartmentName,
		Body:          m.Body,
	}
}

// FromDomain populates the model from a domain message
func (m *ChatMessageModel) FromDomain(msg *chat.Message) {
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.SenderID = msg.Sender.ID
	m.SenderName = msg.Sender.Name
	m.SenderRole = msg.Sender.Role
	m.ReceiverID = msg.Receiver.ID
	m.ReceiverName = msg.Receiver.Name
	m.ReceiverRole = msg.Receiver.Role
	m.ApartmentName = msg.ApartmentName
	m.Body = msg.Body
}
