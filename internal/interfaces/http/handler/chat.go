package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appchat "github.com/tenancy/backend/internal/application/chat"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
)

// SendMessageRequest is the body of POST /chats
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required,uuid"`
	Message    string `json:"message" binding:"required,notblank,max=4000"`
}

// ChatHandler serves apartment chat history and message sending
type ChatHandler struct {
	BaseHandler
	chatService *appchat.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *appchat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send stores a message. A repeat of a message sent moments ago returns
// the stored one with 200 instead of 201.
func (h *ChatHandler) Send(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		h.BadRequest(c, "Invalid receiverId")
		return
	}

	msg, created, err := h.chatService.CreateMessage(c.Request.Context(), actor.ID, receiverID, req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, dto.NewMessageResponse(msg, "Duplicate message ignored"))
		return
	}
	h.Created(c, msg)
}

// MyMessages returns every message the caller sent or received
func (h *ChatHandler) MyMessages(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	messages, err := h.chatService.MyMessages(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, messages)
}

// Conversations returns one summary per chat partner, newest first
func (h *ChatHandler) Conversations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	conversations, err := h.chatService.Conversations(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, conversations)
}

// Partners returns the users the caller may chat with
func (h *ChatHandler) Partners(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	partners, err := h.chatService.Partners(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, partners)
}

// Conversation returns the messages between two users, oldest first
func (h *ChatHandler) Conversation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	a, ok := h.uuidParam(c, "userA")
	if !ok {
		return
	}
	b, ok := h.uuidParam(c, "userB")
	if !ok {
		return
	}
	messages, err := h.chatService.Conversation(c.Request.Context(), actor, a, b)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, messages)
}
