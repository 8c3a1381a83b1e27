package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/tenancy/backend/internal/application/identity"
)

// UserHandler serves profile and apartment member lookups
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Profile returns the caller's own account
func (h *UserHandler) Profile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	user, err := h.userService.Profile(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ListTenants returns the tenants of the landlord's apartment
func (h *UserHandler) ListTenants(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	users, err := h.userService.ListTenants(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, users)
}

// ListLandlords returns the landlords of the tenant's apartment
func (h *UserHandler) ListLandlords(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	users, err := h.userService.ListLandlords(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, users)
}

// UpdateRentAmount sets the landlord's baseline rent used for new bills
func (h *UserHandler) UpdateRentAmount(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req RentAmountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateRentAmount(c.Request.Context(), actor, toDecimal(req.RentAmount))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, user, "Rent amount updated")
}
