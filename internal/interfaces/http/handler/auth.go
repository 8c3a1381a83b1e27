package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/tenancy/backend/internal/application/identity"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account and returns a session token
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := appidentity.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PrimaryPhoneNumber:   req.PrimaryPhoneNumber,
		SecondaryPhoneNumber: req.SecondaryPhoneNumber,
		NationalID:           req.NationalID,
		Role:                 identity.Role(req.Role),
		ApartmentName:        req.ApartmentName,
		BuildingName:         req.BuildingName,
	}
	if req.ApartmentID != "" {
		id, err := uuid.Parse(req.ApartmentID)
		if err != nil {
			h.BadRequest(c, "Invalid apartmentId")
			return
		}
		input.ApartmentID = &id
	}
	if req.RentAmount != nil {
		input.RentAmount = toDecimal(*req.RentAmount)
	}
	movedIn, ok := parseDate(req.DateMovedIn)
	if !ok {
		h.BadRequest(c, "Invalid dateMovedIn")
		return
	}
	input.DateMovedIn = movedIn

	result, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Login checks credentials and returns a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.GetJWTToken(c)
	if token == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, nil, "Logged out successfully")
}
