package model

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// transitions encodes the lifecycle state machine. no-show is reachable from
// confirmed only; completed, cancelled and no-show are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type SubjectKind string

const (
	SubjectService SubjectKind = "service"
	SubjectPackage SubjectKind = "package"
)

// Subject is what the appointment books: exactly one service or package.
// Modelling it as a tagged variant makes the one-of-two rule a structural
// fact instead of a pair of nullable references.
type Subject struct {
	Kind        SubjectKind `json:"kind" bson:"kind" validate:"required,oneof=service package"`
	RefID       string      `json:"ref_id" bson:"ref_id" validate:"required,mongodb"`
	DisplayName string      `json:"display_name" bson:"display_name"`
}

// CustomerSnapshot is the customer identity captured at booking time. Guest
// bookings carry only the contact strings; authenticated bookings also carry
// the user reference. The contact fields are duplicated deliberately so a
// later profile edit never rewrites the historical record.
type CustomerSnapshot struct {
	UserID string `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty,mongodb"`
	Name   string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email  string `json:"email" bson:"email" validate:"required,email"`
	Phone  string `json:"phone" bson:"phone" validate:"required,pk_phone"`
}

type Appointment struct {
	ID       string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date     time.Time        `json:"appointment_date" bson:"appointment_date" validate:"required"`
	TimeSlot string           `json:"appointment_time" bson:"time_slot" validate:"required,time_slot"`
	Subject  Subject          `json:"subject" bson:"subject" validate:"required"`
	Customer CustomerSnapshot `json:"customer" bson:"customer" validate:"required"`
	StaffID  string           `json:"staff_id,omitempty" bson:"staff_id,omitempty" validate:"omitempty,mongodb"`

	// Commercial snapshot, copied from the catalog item at booking time and
	// never recomputed.
	Duration int     `json:"duration" bson:"duration" validate:"required,min=1"`
	Price    float64 `json:"price" bson:"price" validate:"min=0"`

	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=500"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid refunded"`

	Status             Status     `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled no-show"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"max=500"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	ConfirmedBy        string     `json:"confirmed_by,omitempty" bson:"confirmed_by,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// OwnedBy reports whether the actor identified by userID or email is the
// customer who made this appointment. Guest bookings match on the
// snapshotted email.
func (a *Appointment) OwnedBy(userID, email string) bool {
	if userID != "" && a.Customer.UserID == userID {
		return true
	}
	return email != "" && a.Customer.Email == email
}
