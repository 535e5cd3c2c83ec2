package model

import "time"

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleStaff        Role = "staff"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleManager, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}

// User is the read-side projection of the externally owned user store. The
// booking core only needs it for staff-role checks and profile snapshots.
type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,pk_phone"`
	Role      Role      `json:"role" bson:"role" validate:"required,oneof=customer staff manager receptionist admin"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// StaffAssignable reports whether this user may be assigned to an
// appointment as the serving staff member.
func (u *User) StaffAssignable() bool {
	return u.Role == RoleStaff || u.Role == RoleManager
}
