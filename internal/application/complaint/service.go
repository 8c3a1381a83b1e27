// Package complaint runs the maintenance complaint workflow between a
// tenant and their apartment's landlord.
package complaint

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles complaint operations
type Service struct {
	repo      complaint.Repository
	userRepo  identity.UserRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new complaint service
func NewService(repo complaint.Repository, userRepo identity.UserRepository, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create files a complaint against the landlord of the tenant's apartment
func (s *Service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*ComplaintResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleTenant); err != nil {
		return nil, err
	}
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}

	tenant, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	landlord, err := s.userRepo.FindLandlordForApartment(ctx, tenant.ApartmentName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Landlord for your apartment")
		}
		return nil, err
	}

	c, err := complaint.NewComplaint(tenant.ID, tenant.Name, tenant.Email, landlord.ID, tenant.ApartmentName, input.Title, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Complaint submitted",
		zap.String("complaint_id", c.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("apartment", c.ApartmentName))

	resp := ToComplaintResponse(c)
	return &resp, nil
}

// MyComplaints lists the tenant's complaints, newest first
func (s *Service) MyComplaints(ctx context.Context, actor policy.Actor) ([]ComplaintResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleTenant); err != nil {
		return nil, err
	}
	list, err := s.repo.FindByTenant(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return ToComplaintResponses(list), nil
}

// ApartmentComplaints lists all complaints of the landlord's apartment,
// newest first
func (s *Service) ApartmentComplaints(ctx context.Context, actor policy.Actor) ([]ComplaintResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	list, err := s.repo.FindByApartment(ctx, actor.ApartmentName)
	if err != nil {
		return nil, err
	}
	return ToComplaintResponses(list), nil
}

// TenantComplaints lists one tenant's complaints for the landlord of
// their apartment
func (s *Service) TenantComplaints(ctx context.Context, actor policy.Actor, tenantID uuid.UUID) ([]ComplaintResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	tenant, err := s.userRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsTenant() {
		return nil, shared.NotFound("Tenant")
	}
	if err := policy.CanManageApartmentRecord(actor, tenant.ApartmentName); err != nil {
		return nil, err
	}
	list, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToComplaintResponses(list), nil
}

// UpdateStatus moves a complaint of the landlord's apartment to a new
// status and notifies the tenant
func (s *Service) UpdateStatus(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateStatusInput) (*ComplaintResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageApartmentRecord(actor, c.ApartmentName); err != nil {
		return nil, err
	}
	if err := c.UpdateStatus(input.Status, input.LandlordNotes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish complaint events", zap.Error(err))
		}
	}

	s.logger.Info("Complaint status updated",
		zap.String("complaint_id", c.ID.String()),
		zap.String("status", string(c.Status)))

	resp := ToComplaintResponse(c)
	return &resp, nil
}
