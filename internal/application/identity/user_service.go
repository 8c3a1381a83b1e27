package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/policy"
	"github.com/tenancy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService serves profile and apartment directory queries
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// ResolveActor loads the caller named by a token. A deleted account is
// unauthorized rather than not found.
func (s *UserService) ResolveActor(ctx context.Context, userID uuid.UUID) (policy.Actor, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return policy.Actor{}, shared.NewDomainError(shared.CodeUnauthorized, "User not found")
		}
		return policy.Actor{}, err
	}
	return policy.ActorFromUser(user), nil
}

// Profile returns the caller's own account
func (s *UserService) Profile(ctx context.Context, actor policy.Actor) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListTenants lists the tenants of a landlord's apartment
func (s *UserService) ListTenants(ctx context.Context, actor policy.Actor) ([]UserResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	return s.listApartment(ctx, actor, identity.RoleTenant)
}

// ListLandlords lists the landlords of a tenant's apartment
func (s *UserService) ListLandlords(ctx context.Context, actor policy.Actor) ([]UserResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleTenant); err != nil {
		return nil, err
	}
	return s.listApartment(ctx, actor, identity.RoleLandlord)
}

func (s *UserService) listApartment(ctx context.Context, actor policy.Actor, role identity.Role) ([]UserResponse, error) {
	if err := policy.RequireApartment(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByApartment(ctx, actor.ApartmentName, role)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

// UpdateRentAmount changes the landlord's baseline rent used by bill
// generation
func (s *UserService) UpdateRentAmount(ctx context.Context, actor policy.Actor, amount decimal.Decimal) (*UserResponse, error) {
	if err := policy.RequireRole(actor, identity.RoleLandlord); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := user.SetRentAmount(amount); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRentAmount(ctx, user.ID, amount); err != nil {
		return nil, err
	}

	s.logger.Info("Rent amount updated",
		zap.String("user_id", user.ID.String()),
		zap.String("amount", amount.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}
