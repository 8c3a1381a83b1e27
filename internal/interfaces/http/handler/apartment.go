package handler

import (
	"github.com/gin-gonic/gin"
	appapartment "github.com/tenancy/backend/internal/application/apartment"
)

// CreateApartmentRequest is the body of POST /apartments
type CreateApartmentRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=100"`
	RentAmount  float64 `json:"rentAmount" binding:"gte=0"`
	Location    string  `json:"location" binding:"omitempty,max=200"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	MaxTenants  int     `json:"maxTenants" binding:"omitempty,gte=1"`
}

// UpdateApartmentRequest is the body of PUT /apartments/:id; absent
// fields keep their value
type UpdateApartmentRequest struct {
	Name        *string  `json:"name" binding:"omitempty,notblank,max=100"`
	RentAmount  *float64 `json:"rentAmount" binding:"omitempty,gte=0"`
	Location    *string  `json:"location" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	MaxTenants  *int     `json:"maxTenants" binding:"omitempty,gte=1"`
	IsActive    *bool    `json:"isActive"`
}

// ApartmentHandler serves the apartment registry
type ApartmentHandler struct {
	BaseHandler
	apartmentService *appapartment.Service
}

// NewApartmentHandler creates a new apartment handler
func NewApartmentHandler(apartmentService *appapartment.Service) *ApartmentHandler {
	return &ApartmentHandler{apartmentService: apartmentService}
}

// ListAvailable returns active apartments with room for another tenant
func (h *ApartmentHandler) ListAvailable(c *gin.Context) {
	apartments, err := h.apartmentService.ListAvailable(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, apartments)
}

// Get returns one apartment
func (h *ApartmentHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	apt, err := h.apartmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apt)
}

// ListMine returns the calling landlord's apartments
func (h *ApartmentHandler) ListMine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	apartments, err := h.apartmentService.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, apartments)
}

// Create adds an apartment
func (h *ApartmentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateApartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	apt, err := h.apartmentService.Create(c.Request.Context(), actor, appapartment.CreateInput{
		Name:        req.Name,
		RentAmount:  toDecimal(req.RentAmount),
		Location:    req.Location,
		Description: req.Description,
		MaxTenants:  req.MaxTenants,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apt)
}

// Update edits an apartment
func (h *ApartmentHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpdateApartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	apt, err := h.apartmentService.Update(c.Request.Context(), actor, id, appapartment.UpdateInput{
		Name:        req.Name,
		RentAmount:  toDecimalPtr(req.RentAmount),
		Location:    req.Location,
		Description: req.Description,
		MaxTenants:  req.MaxTenants,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apt)
}

// Delete removes an apartment
func (h *ApartmentHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.apartmentService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, nil, "Apartment deleted")
}
