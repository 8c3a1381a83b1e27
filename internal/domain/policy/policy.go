// Package policy decides who may see and change apartment-scoped records.
//
// Apartment scope is a case-insensitive match on apartment name. Callers
// report missing records as not found before consulting the policy.
package policy

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
)

// Actor is the authenticated caller
type Actor struct {
	ID            uuid.UUID
	Role          identity.Role
	ApartmentName string
}

// ActorFromUser builds an actor from a loaded user
func ActorFromUser(u *identity.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, ApartmentName: u.ApartmentName}
}

// IsLandlord reports whether the actor is a landlord
func (a Actor) IsLandlord() bool { return a.Role == identity.RoleLandlord }

// IsTenant reports whether the actor is a tenant
func (a Actor) IsTenant() bool { return a.Role == identity.RoleTenant }

// SameApartment compares apartment names case-insensitively.
// An empty name never matches.
func SameApartment(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// ApartmentKey is the canonical form of an apartment name used for
// grouping and room ids.
func ApartmentKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RequireRole fails with forbidden unless the actor has the role
func RequireRole(actor Actor, role identity.Role) error {
	if actor.Role != role {
		return shared.Forbidden("Only " + strings.ToLower(string(role)) + "s can perform this action")
	}
	return nil
}

// RequireApartment fails with invalid input when the actor has no apartment
func RequireApartment(actor Actor) error {
	if strings.TrimSpace(actor.ApartmentName) == "" {
		return shared.InvalidInput("User has no apartment assigned")
	}
	return nil
}

// CanManageApartment allows only the owning landlord
func CanManageApartment(actor Actor, landlordID uuid.UUID) error {
	if err := RequireRole(actor, identity.RoleLandlord); err != nil {
		return err
	}
	if actor.ID != landlordID {
		return shared.Forbidden("You do not own this apartment")
	}
	return nil
}

// CanManageApartmentRecord allows a landlord whose apartment matches the
// record's apartment. Used for bills, complaints and rules.
func CanManageApartmentRecord(actor Actor, apartmentName string) error {
	if err := RequireRole(actor, identity.RoleLandlord); err != nil {
		return err
	}
	if !SameApartment(actor.ApartmentName, apartmentName) {
		return shared.Forbidden("Record belongs to a different apartment")
	}
	return nil
}

// CanAccessBill allows the owning tenant or the apartment's landlord
func CanAccessBill(actor Actor, tenantID uuid.UUID, apartmentName string) error {
	switch actor.Role {
	case identity.RoleTenant:
		if actor.ID == tenantID {
			return nil
		}
		return shared.Forbidden("You can only access your own bills")
	case identity.RoleLandlord:
		return CanManageApartmentRecord(actor, apartmentName)
	}
	return shared.ErrForbidden
}

// CanPayBill allows only the tenant the bill belongs to
func CanPayBill(actor Actor, tenantID uuid.UUID) error {
	if actor.ID != tenantID {
		return shared.Forbidden("You can only pay your own bills")
	}
	return nil
}

// CanChat checks that two users may exchange messages
func CanChat(sender, receiver Actor) error {
	if strings.TrimSpace(sender.ApartmentName) == "" || strings.TrimSpace(receiver.ApartmentName) == "" {
		return shared.InvalidInput("Both users must have apartment names set")
	}
	if !SameApartment(sender.ApartmentName, receiver.ApartmentName) {
		return shared.Forbidden("Can only chat with people in the same apartment")
	}
	return nil
}

// PartnerRole is the role whose members the actor may chat with
func PartnerRole(actor Actor) identity.Role {
	if actor.IsLandlord() {
		return identity.RoleTenant
	}
	return identity.RoleLandlord
}
