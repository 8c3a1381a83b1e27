package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	appidentity "github.com/tenancy/backend/internal/application/identity"
	"github.com/tenancy/backend/internal/infrastructure/logger"
	"github.com/tenancy/backend/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

// WebSocketHandler upgrades authenticated requests to live chat connections
type WebSocketHandler struct {
	BaseHandler
	hub         *realtime.Hub
	sender      realtime.MessageSender
	userService *appidentity.UserService
	upgrader    *websocket.Upgrader
	cfg         realtime.Config
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(
	hub *realtime.Hub,
	sender realtime.MessageSender,
	userService *appidentity.UserService,
	upgrader *websocket.Upgrader,
	cfg realtime.Config,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		sender:      sender,
		userService: userService,
		upgrader:    upgrader,
		cfg:         cfg,
	}
}

// Connect upgrades the request and hands the connection to the hub
func (h *WebSocketHandler) Connect(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	profile, err := h.userService.Profile(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		logger.GetGinLogger(c).Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	user := realtime.UserRef{
		UserID: profile.ID,
		Name:   profile.Name,
		Role:   string(profile.Role),
	}
	realtime.NewClient(h.hub, conn, user, profile.ApartmentName, h.sender, h.cfg).Start()
}

// OnlineUsers lists the users holding at least one live connection
func (h *WebSocketHandler) OnlineUsers(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	list(c, h.hub.OnlineUsers(c.Request.Context()))
}
