package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/tenancy/backend/internal/domain/apartment"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// CodeInvalidCredentials is returned for a wrong email or password
const CodeInvalidCredentials = "INVALID_CREDENTIALS"

// Registrar persists a new account together with its apartment side
// effects atomically
type Registrar interface {
	RegisterLandlord(ctx context.Context, user *identity.User, apt *apartment.Apartment) error
	RegisterTenant(ctx context.Context, user *identity.User) error
}

// AuthService handles registration, login and logout
type AuthService struct {
	userRepo      identity.UserRepository
	apartmentRepo apartment.Repository
	registrar     Registrar
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	apartmentRepo apartment.Repository,
	registrar Registrar,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		apartmentRepo: apartmentRepo,
		registrar:     registrar,
		jwtService:    jwtService,
		blacklist:     blacklist,
		logger:        logger,
	}
}

// Register creates a landlord (with their apartment) or a tenant (joining
// an existing apartment) and signs them in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if !input.Role.IsValid() {
		return nil, shared.InvalidInput("Role must be Tenant or Landlord")
	}
	if input.Role == identity.RoleTenant && input.ApartmentID == nil {
		return nil, shared.InvalidInput("Please select an apartment")
	}
	if input.Role == identity.RoleLandlord && strings.TrimSpace(input.ApartmentName) == "" {
		return nil, shared.InvalidInput("Apartment name is required")
	}

	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "User already exists")
	}
	if nid := strings.TrimSpace(input.NationalID); nid != "" {
		exists, err = s.userRepo.ExistsByNationalID(ctx, nid)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "National ID already registered")
		}
	}

	profile := identity.Profile{
		Name:                 input.Name,
		Email:                email,
		Password:             input.Password,
		PrimaryPhoneNumber:   input.PrimaryPhoneNumber,
		SecondaryPhoneNumber: input.SecondaryPhoneNumber,
		NationalID:           input.NationalID,
		BuildingName:         input.BuildingName,
		DateMovedIn:          input.DateMovedIn,
	}

	var user *identity.User
	if input.Role == identity.RoleLandlord {
		user, err = s.registerLandlord(ctx, profile, input)
	} else {
		user, err = s.registerTenant(ctx, profile, input)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("apartment", user.ApartmentName))

	return s.issue(user)
}

func (s *AuthService) registerLandlord(ctx context.Context, profile identity.Profile, input RegisterInput) (*identity.User, error) {
	user, err := identity.NewLandlord(profile, input.ApartmentName, input.RentAmount)
	if err != nil {
		return nil, err
	}
	apt, err := apartment.NewApartment(user.ID, user.Name, apartment.Details{
		Name:       user.ApartmentName,
		RentAmount: input.RentAmount,
	})
	if err != nil {
		return nil, err
	}
	user.ApartmentID = &apt.ID

	if err := s.registrar.RegisterLandlord(ctx, user, apt); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) registerTenant(ctx context.Context, profile identity.Profile, input RegisterInput) (*identity.User, error) {
	apt, err := s.apartmentRepo.FindByID(ctx, *input.ApartmentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.InvalidInput("Selected apartment not found")
		}
		return nil, err
	}

	user, err := identity.NewTenant(profile, apt.ID, apt.Name)
	if err != nil {
		return nil, err
	}
	if err := s.registrar.RegisterTenant(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		return shared.NewDomainError(shared.CodeUnauthorized, "Invalid token")
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.Generate(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	return &AuthResult{
		User:      ToUserResponse(user),
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
