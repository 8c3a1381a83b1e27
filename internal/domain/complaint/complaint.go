package complaint

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/shared"
)

// Status is the complaint's workflow state
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// IsValid checks the status against the enum
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Complaint is raised by a tenant and resolved by the apartment's landlord.
// Any status may follow any other; only Completed carries a resolution time.
type Complaint struct {
	shared.BaseAggregateRoot
	TenantID      uuid.UUID
	TenantName    string
	TenantEmail   string
	LandlordID    uuid.UUID
	ApartmentName string
	Title         string
	Description   string
	Status        Status
	SubmittedAt   time.Time
	ResolvedAt    *time.Time
	LandlordNotes string
}

// NewComplaint creates a pending complaint
func NewComplaint(tenantID uuid.UUID, tenantName, tenantEmail string, landlordID uuid.UUID, apartmentName, title, description string) (*Complaint, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, shared.InvalidInput("Title and description are required")
	}
	if len(title) > 200 {
		return nil, shared.InvalidInput("Title cannot exceed 200 characters")
	}

	c := &Complaint{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		TenantName:        tenantName,
		TenantEmail:       tenantEmail,
		LandlordID:        landlordID,
		ApartmentName:     strings.TrimSpace(apartmentName),
		Title:             title,
		Description:       description,
		Status:            StatusPending,
	}
	c.SubmittedAt = c.CreatedAt
	return c, nil
}

// UpdateStatus sets the status and landlord notes. Entering Completed
// stamps ResolvedAt; any other status clears it.
func (c *Complaint) UpdateStatus(status Status, notes string) error {
	if !status.IsValid() {
		return shared.InvalidInput("Invalid complaint status")
	}
	previous := c.Status
	now := time.Now()

	c.Status = status
	if status == StatusCompleted {
		c.ResolvedAt = &now
	} else {
		c.ResolvedAt = nil
	}
	c.LandlordNotes = strings.TrimSpace(notes)
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewComplaintStatusChangedEvent(c, previous))
	return nil
}
