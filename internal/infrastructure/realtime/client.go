package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tenancy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config holds connection timing and size limits
type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
	// SendTimeout bounds persisting a sendMessage frame
	SendTimeout time.Duration
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		MaxMessageSize: 8 << 10,
		SendBuffer:     64,
		SendTimeout:    5 * time.Second,
	}
}

// MessageSender persists a chat message sent over the socket. Successful
// sends reach the room through Hub.MessageCreated.
type MessageSender interface {
	SendChat(ctx context.Context, senderID, receiverID uuid.UUID, content string) error
}

// Client is one websocket connection of an authenticated user
type Client struct {
	ID   string
	User UserRef

	apartmentRoom string
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	cfg           Config
	sender        MessageSender
	logger        *zap.Logger
}

// NewClient wraps an upgraded connection. apartmentName decides which room
// the user may join.
func NewClient(hub *Hub, conn *websocket.Conn, user UserRef, apartmentName string, sender MessageSender, cfg Config) *Client {
	def := DefaultConfig()
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	id := uuid.NewString()
	return &Client{
		ID:            id,
		User:          user,
		apartmentRoom: RoomForApartment(apartmentName),
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, cfg.SendBuffer),
		cfg:           cfg,
		sender:        sender,
		logger:        hub.logger.With(zap.String("conn_id", id), zap.String("user_id", user.UserID.String())),
	}
}

// Start registers the client and launches its pumps
func (c *Client) Start() {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// enqueue is only called from the hub goroutine
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping event")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg IncomingMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("INVALID_JSON", "Failed to parse message")
		return
	}

	switch msg.Type {
	case TypeJoinRoom:
		var data JoinRoomData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("INVALID_DATA", "Failed to parse joinRoom data")
				return
			}
		}
		room := strings.ToLower(strings.TrimSpace(data.RoomID))
		if room == "" {
			room = c.apartmentRoom
		}
		if room == "" || room != c.apartmentRoom {
			c.sendError(shared.CodeForbidden, "You can only join your own apartment room")
			return
		}
		c.hub.Join(c, room)

	case TypeTyping, TypeStopTyping:
		c.hub.roomEvent(c, msg.Type, c.User)

	case TypeSendMessage:
		var data SendMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("INVALID_DATA", "Failed to parse sendMessage data")
			return
		}
		if c.sender == nil {
			c.sendError("UNAVAILABLE", "Messaging is not available")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SendTimeout)
		err := c.sender.SendChat(ctx, c.User.UserID, data.ReceiverID, data.Content)
		cancel()
		if err != nil {
			var derr *shared.DomainError
			if errors.As(err, &derr) {
				c.sendError(derr.Code, derr.Message)
				return
			}
			c.logger.Error("failed to send chat message", zap.Error(err))
			c.sendError("INTERNAL_ERROR", "Failed to send message")
		}

	default:
		c.sendError("UNKNOWN_TYPE", "Unknown message type: "+msg.Type)
	}
}

func (c *Client) sendError(code, message string) {
	c.hub.sendTo(c, EventError, ErrorData{Code: code, Message: message})
}
