package complaint

import (
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/complaint"
)

// CreateInput is a tenant's new complaint
type CreateInput struct {
	Title       string
	Description string
}

// UpdateStatusInput is a landlord's workflow update
type UpdateStatusInput struct {
	Status        complaint.Status
	LandlordNotes string
}

// ComplaintResponse is the public view of a complaint
type ComplaintResponse struct {
	ID            uuid.UUID        `json:"id"`
	TenantID      uuid.UUID        `json:"tenantId"`
	TenantName    string           `json:"tenantName"`
	TenantEmail   string           `json:"tenantEmail"`
	LandlordID    uuid.UUID        `json:"landlordId"`
	ApartmentName string           `json:"apartmentName"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Status        complaint.Status `json:"status"`
	SubmittedAt   time.Time        `json:"submittedAt"`
	ResolvedAt    *time.Time       `json:"resolvedAt"`
	LandlordNotes string           `json:"landlordNotes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ToComplaintResponse converts a domain complaint
func ToComplaintResponse(c *complaint.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:            c.ID,
		TenantID:      c.TenantID,
		TenantName:    c.TenantName,
		TenantEmail:   c.TenantEmail,
		LandlordID:    c.LandlordID,
		ApartmentName: c.ApartmentName,
		Title:         c.Title,
		Description:   c.Description,
		Status:        c.Status,
		SubmittedAt:   c.SubmittedAt,
		ResolvedAt:    c.ResolvedAt,
		LandlordNotes: c.LandlordNotes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToComplaintResponses converts a slice of complaints
func ToComplaintResponses(list []*complaint.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, len(list))
	for i, c := range list {
		out[i] = ToComplaintResponse(c)
	}
	return out
}
