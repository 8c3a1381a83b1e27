package complaint

import (
	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/shared"
)

// EventTypeComplaintStatusChanged is published after a landlord update
const EventTypeComplaintStatusChanged = "ComplaintStatusChanged"

// StatusChangedEvent is raised when a landlord updates a complaint
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	ComplaintID    uuid.UUID `json:"complaint_id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	TenantName     string    `json:"tenant_name"`
	TenantEmail    string    `json:"tenant_email"`
	Title          string    `json:"title"`
	PreviousStatus Status    `json:"previous_status"`
	Status         Status    `json:"status"`
	LandlordNotes  string    `json:"landlord_notes"`
}

// NewComplaintStatusChangedEvent creates a StatusChangedEvent
func NewComplaintStatusChangedEvent(c *Complaint, previous Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeComplaintStatusChanged, "Complaint", c.ID),
		ComplaintID:     c.ID,
		TenantID:        c.TenantID,
		TenantName:      c.TenantName,
		TenantEmail:     c.TenantEmail,
		Title:           c.Title,
		PreviousStatus:  previous,
		Status:          c.Status,
		LandlordNotes:   c.LandlordNotes,
	}
}
