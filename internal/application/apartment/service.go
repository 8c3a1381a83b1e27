// Package apartment serves the apartment registry: the public directory
// tenants pick from and the landlord's own management operations.
package apartment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles apartment operations
type Service struct {
	apartmentRepo apartment.Repository
	userRepo      identity.UserRepository
	logger        *zap.Logger
}

// NewService creates a new apartment service
func NewService(apartmentRepo apartment.Repository, userRepo identity.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		apartmentRepo: apartmentRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// ListAvailable lists active apartments by name
func (s *Service) ListAvailable(ctx context.Context) ([]ApartmentResponse, error) {
	list, err := s.apartmentRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToApartmentResponses(list), nil
}

// Get returns a single apartment
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ApartmentResponse, error) {
	a, err := s.apartmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToApartmentResponse(a)
	return &resp, nil
}

// ListMine lists the landlord's apartments by name
func (s *Service) ListMine(ctx context.Context, actor policy.Actor) ([]ApartmentResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	list, err := s.apartmentRepo.FindByLandlord(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return ToApartmentResponses(list), nil
}

// Create adds an apartment owned by the calling landlord
func (s *Service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*ApartmentResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	landlord, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	a, err := apartment.NewApartment(actor.ID, landlord.Name, apartment.Details{
		Name:        input.Name,
		RentAmount:  input.RentAmount,
		Location:    input.Location,
		Description: input.Description,
		MaxTenants:  input.MaxTenants,
	})
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, actor.ID, a.Name, a.ID); err != nil {
		return nil, err
	}
	if err := s.apartmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Apartment created",
		zap.String("apartment_id", a.ID.String()),
		zap.String("landlord_id", actor.ID.String()),
		zap.String("name", a.Name))

	resp := ToApartmentResponse(a)
	return &resp, nil
}

// Update changes an apartment the landlord owns. Apartments of other
// landlords are reported as not found.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*ApartmentResponse, error) {
	a, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := s.ensureNameFree(ctx, actor.ID, *input.Name, a.ID); err != nil {
			return nil, err
		}
	}
	if err := a.Apply(apartment.Update{
		Name:        input.Name,
		RentAmount:  input.RentAmount,
		Location:    input.Location,
		Description: input.Description,
		MaxTenants:  input.MaxTenants,
		IsActive:    input.IsActive,
	}); err != nil {
		return nil, err
	}
	if err := s.apartmentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Apartment updated", zap.String("apartment_id", a.ID.String()))
	resp := ToApartmentResponse(a)
	return &resp, nil
}

// Delete removes an apartment the landlord owns
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.apartmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Apartment deleted", zap.String("apartment_id", id.String()))
	return nil
}

// IncrementTenants bumps the occupancy counter of an apartment
func (s *Service) IncrementTenants(ctx context.Context, id uuid.UUID) error {
	return s.apartmentRepo.IncrementTenants(ctx, id)
}

func (s *Service) loadOwned(ctx context.Context, actor policy.Actor, id uuid.UUID) (*apartment.Apartment, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	a, err := s.apartmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.CanManageApartment(actor, a.LandlordID) != nil {
		return nil, shared.NotFound("Apartment")
	}
	return a, nil
}

// ensureNameFree rejects a name the landlord already uses on another
// apartment
func (s *Service) ensureNameFree(ctx context.Context, landlordID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.apartmentRepo.FindByLandlordAndName(ctx, landlordID, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == self {
		return nil
	}
	return shared.NewDomainError(shared.CodeAlreadyExists, "You already have an apartment with this name")
}
