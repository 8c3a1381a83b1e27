package handler

import (
	"github.com/gin-gonic/gin"
	appcomplaint "github.com/tenancy/backend/internal/application/complaint"
	"github.com/tenancy/backend/internal/domain/complaint"
)

// CreateComplaintRequest is the body of POST /complaints
type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"required,notblank,max=5000"`
}

// UpdateComplaintStatusRequest is the body of PUT /complaints/:complaintId
type UpdateComplaintStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	LandlordNotes string `json:"landlordNotes" binding:"omitempty,max=2000"`
}

// ComplaintHandler serves the complaint workflow
type ComplaintHandler struct {
	BaseHandler
	complaintService *appcomplaint.Service
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaintService *appcomplaint.Service) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// Create files a complaint for the calling tenant
func (h *ComplaintHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CreateComplaintRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.complaintService.Create(c.Request.Context(), actor, appcomplaint.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// MyComplaints returns the calling tenant's complaints
func (h *ComplaintHandler) MyComplaints(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.complaintService.MyComplaints(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, result)
}

// ApartmentComplaints returns every complaint of the landlord's apartment
func (h *ComplaintHandler) ApartmentComplaints(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.complaintService.ApartmentComplaints(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, result)
}

// TenantComplaints returns the complaints of one tenant of the apartment
func (h *ComplaintHandler) TenantComplaints(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	tenantID, ok := h.uuidParam(c, "tenantId")
	if !ok {
		return
	}
	result, err := h.complaintService.TenantComplaints(c.Request.Context(), actor, tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list(c, result)
}

// UpdateStatus moves a complaint through Pending, In Progress and Completed
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "complaintId")
	if !ok {
		return
	}
	var req UpdateComplaintStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.complaintService.UpdateStatus(c.Request.Context(), actor, id, appcomplaint.UpdateStatusInput{
		Status:        complaint.Status(req.Status),
		LandlordNotes: req.LandlordNotes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
