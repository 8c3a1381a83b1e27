// Package realtime is the live chat channel: a websocket hub that tracks
// who is online and fans typing indicators and new messages out to
// apartment rooms.
package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Client to server message types
const (
	TypeJoinRoom    = "joinRoom"
	TypeTyping      = "typing"
	TypeStopTyping  = "stopTyping"
	TypeSendMessage = "sendMessage"
)

// Server to client event types
const (
	EventConnected   = "connected"
	EventUserOnline  = "userOnline"
	EventUserOffline = "userOffline"
	EventUserJoined  = "userJoined"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
	EventNewMessage  = "newMessage"
	EventError       = "error"
)

// IncomingMessage is a frame received from a client
type IncomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutgoingMessage is a frame sent to clients
type OutgoingMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// JoinRoomData is the payload of joinRoom
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// SendMessageData is the payload of sendMessage
type SendMessageData struct {
	Content    string    `json:"content"`
	ReceiverID uuid.UUID `json:"receiverId"`
}

// UserRef identifies a user in presence and typing events
type UserRef struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   string    `json:"role,omitempty"`
}

// ConnectedData is sent to a client right after it registers
type ConnectedData struct {
	ConnectionID string `json:"connectionId"`
	RoomID       string `json:"roomId"`
}

// JoinedData announces a room join
type JoinedData struct {
	User   UserRef `json:"user"`
	RoomID string  `json:"roomId"`
}

// ErrorData describes a rejected client message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(eventType string, data any) ([]byte, error) {
	return json.Marshal(OutgoingMessage{Type: eventType, Data: data})
}
