// Package auth carries the caller identity resolved by the upstream
// authentication gateway. The booking core never verifies credentials
// itself; it trusts the X-User-* headers the gateway injects and treats
// their absence as a guest caller.
package auth

import (
	"net/http"

	"salonbook/pkg/model"
)

type Actor struct {
	UserID string
	Role   model.Role
	Name   string
	Email  string
	Phone  string
}

func (a Actor) IsGuest() bool {
	return a.UserID == ""
}

// IsStaff reports whether the actor holds any back-office role.
func (a Actor) IsStaff() bool {
	switch a.Role {
	case model.RoleStaff, model.RoleManager, model.RoleReceptionist, model.RoleAdmin:
		return true
	}
	return false
}

// CanCreateWalkIn reports whether the actor may create walk-in
// appointments on behalf of in-person customers.
func (a Actor) CanCreateWalkIn() bool {
	switch a.Role {
	case model.RoleReceptionist, model.RoleManager, model.RoleAdmin:
		return true
	}
	return false
}

// CanHardDelete reports whether the actor may physically remove an
// appointment record.
func (a Actor) CanHardDelete() bool {
	return a.Role == model.RoleReceptionist || a.Role == model.RoleAdmin
}

func FromRequest(r *http.Request) Actor {
	actor := Actor{
		UserID: r.Header.Get("X-User-ID"),
		Name:   r.Header.Get("X-User-Name"),
		Email:  r.Header.Get("X-User-Email"),
		Phone:  r.Header.Get("X-User-Phone"),
	}
	if role := model.Role(r.Header.Get("X-User-Role")); role.Valid() {
		actor.Role = role
	} else if actor.UserID != "" {
		actor.Role = model.RoleCustomer
	}
	return actor
}
