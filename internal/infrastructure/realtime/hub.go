package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/policy"
	"go.uber.org/zap"
)

// Observer is notified when connections open and close
type Observer interface {
	ConnectionOpened(ctx context.Context)
	ConnectionClosed(ctx context.Context)
}

type joinRequest struct {
	client *Client
	room   string
}

type roomEvent struct {
	from      *Client
	eventType string
	data      any
}

type broadcastRequest struct {
	room      string // empty means every connection
	eventType string
	data      any
}

type directMessage struct {
	client    *Client
	eventType string
	data      any
}

// Hub owns the connection registry. Every mutation and every fan-out runs
// on the Run goroutine; other goroutines talk to it through channels.
type Hub struct {
	// clients maps each live connection to its room ("" until it joins)
	clients map[*Client]string

	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	roomcast   chan roomEvent
	broadcast  chan broadcastRequest
	direct     chan directMessage
	presence   chan chan []UserRef

	quit      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	quitOnce  sync.Once

	logger   *zap.Logger
	observer Observer
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithObserver reports connection counts to o
func WithObserver(o Observer) HubOption {
	return func(h *Hub) { h.observer = o }
}

// NewHub creates a hub; call Run to start it
func NewHub(logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		roomcast:   make(chan roomEvent, 64),
		broadcast:  make(chan broadcastRequest, 256),
		direct:     make(chan directMessage, 64),
		presence:   make(chan chan []UserRef),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger.With(zap.String("component", "realtime")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves hub requests until ctx is cancelled or Shutdown is called
func (h *Hub) Run(ctx context.Context) {
	started := false
	h.startOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.registerClient(ctx, c)
		case c := <-h.unregister:
			h.unregisterClient(ctx, c)
		case req := <-h.join:
			h.joinRoom(req)
		case ev := <-h.roomcast:
			h.fanOutFrom(ev)
		case req := <-h.broadcast:
			h.fanOut(req)
		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.eventType, msg.data)
			}
		case reply := <-h.presence:
			reply <- h.onlineUsers()
		case <-ctx.Done():
			h.closeAll(ctx)
			return
		case <-h.quit:
			h.closeAll(ctx)
			return
		}
	}
}

// Shutdown stops Run and closes every connection's send queue
func (h *Hub) Shutdown() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// Register adds a connection. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister removes a connection and announces it offline
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Join moves a connection into room
func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- joinRequest{client: c, room: room}:
	case <-h.stopped:
	}
}

// BroadcastToRoom sends an event to every connection in room
func (h *Hub) BroadcastToRoom(room, eventType string, data any) {
	h.submitBroadcast(broadcastRequest{room: room, eventType: eventType, data: data})
}

// BroadcastAll sends an event to every connection
func (h *Hub) BroadcastAll(eventType string, data any) {
	h.submitBroadcast(broadcastRequest{eventType: eventType, data: data})
}

// MessageCreated pushes a persisted chat message to its apartment room
func (h *Hub) MessageCreated(m *chat.Message) {
	h.BroadcastToRoom(RoomForApartment(m.ApartmentName), EventNewMessage, NewMessagePayload(m))
}

// OnlineUsers lists users with at least one live connection
func (h *Hub) OnlineUsers(ctx context.Context) []UserRef {
	reply := make(chan []UserRef, 1)
	select {
	case h.presence <- reply:
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case users := <-reply:
		return users
	case <-ctx.Done():
		return nil
	}
}

// RoomForApartment is the room id of an apartment
func RoomForApartment(apartmentName string) string {
	return policy.ApartmentKey(apartmentName)
}

func (h *Hub) submitBroadcast(req broadcastRequest) {
	select {
	case h.broadcast <- req:
	case <-h.stopped:
	default:
		h.logger.Warn("broadcast queue full, dropping event", zap.String("event", req.eventType))
	}
}

func (h *Hub) roomEvent(from *Client, eventType string, data any) {
	select {
	case h.roomcast <- roomEvent{from: from, eventType: eventType, data: data}:
	case <-h.stopped:
	}
}

func (h *Hub) sendTo(c *Client, eventType string, data any) {
	select {
	case h.direct <- directMessage{client: c, eventType: eventType, data: data}:
	case <-h.stopped:
	}
}

func (h *Hub) registerClient(ctx context.Context, c *Client) {
	h.clients[c] = ""
	h.logger.Debug("connection registered",
		zap.String("conn_id", c.ID),
		zap.String("user_id", c.User.UserID.String()))
	if h.observer != nil {
		h.observer.ConnectionOpened(ctx)
	}

	h.deliver(c, EventConnected, ConnectedData{ConnectionID: c.ID, RoomID: c.apartmentRoom})
	h.fanOut(broadcastRequest{eventType: EventUserOnline, data: c.User})
}

func (h *Hub) unregisterClient(ctx context.Context, c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Debug("connection unregistered", zap.String("conn_id", c.ID))
	if h.observer != nil {
		h.observer.ConnectionClosed(ctx)
	}

	h.fanOut(broadcastRequest{eventType: EventUserOffline, data: c.User})
}

func (h *Hub) joinRoom(req joinRequest) {
	if _, ok := h.clients[req.client]; !ok {
		return
	}
	h.clients[req.client] = req.room
	h.fanOut(broadcastRequest{
		room:      req.room,
		eventType: EventUserJoined,
		data:      JoinedData{User: req.client.User, RoomID: req.room},
	})
}

// fanOutFrom sends a client's event to the rest of its room
func (h *Hub) fanOutFrom(ev roomEvent) {
	room, ok := h.clients[ev.from]
	if !ok {
		return
	}
	if room == "" {
		h.deliver(ev.from, EventError, ErrorData{Code: "NOT_IN_ROOM", Message: "Join a room first"})
		return
	}
	data, err := encode(ev.eventType, ev.data)
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	for c, r := range h.clients {
		if c != ev.from && r == room {
			c.enqueue(data)
		}
	}
}

func (h *Hub) fanOut(req broadcastRequest) {
	data, err := encode(req.eventType, req.data)
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	for c, room := range h.clients {
		if req.room == "" || room == req.room {
			c.enqueue(data)
		}
	}
}

func (h *Hub) deliver(c *Client, eventType string, payload any) {
	data, err := encode(eventType, payload)
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	c.enqueue(data)
}

func (h *Hub) onlineUsers() []UserRef {
	seen := make(map[uuid.UUID]struct{}, len(h.clients))
	users := make([]UserRef, 0, len(h.clients))
	for c := range h.clients {
		if _, ok := seen[c.User.UserID]; ok {
			continue
		}
		seen[c.User.UserID] = struct{}{}
		users = append(users, c.User)
	}
	return users
}

func (h *Hub) closeAll(ctx context.Context) {
	for c := range h.clients {
		close(c.send)
		if h.observer != nil {
			h.observer.ConnectionClosed(ctx)
		}
	}
	h.clients = make(map[*Client]string)
	h.logger.Info("hub stopped")
}

// MessagePayload is the newMessage event body
type MessagePayload struct {
	ID            uuid.UUID `json:"id"`
	SenderID      uuid.UUID `json:"senderId"`
	SenderName    string    `json:"senderName"`
	SenderRole    string    `json:"senderRole"`
	ReceiverID    uuid.UUID `json:"receiverId"`
	ReceiverName  string    `json:"receiverName"`
	ReceiverRole  string    `json:"receiverRole"`
	ApartmentName string    `json:"apartmentName"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewMessagePayload converts a chat message for the wire
func NewMessagePayload(m *chat.Message) MessagePayload {
	return MessagePayload{
		ID:            m.ID,
		SenderID:      m.Sender.ID,
		SenderName:    m.Sender.Name,
		SenderRole:    string(m.Sender.Role),
		ReceiverID:    m.Receiver.ID,
		ReceiverName:  m.Receiver.Name,
		ReceiverRole:  string(m.Receiver.Role),
		ApartmentName: m.ApartmentName,
		Message:       m.Body,
		CreatedAt:     m.CreatedAt,
	}
}
