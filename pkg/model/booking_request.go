package model

// BookingRequest is the inbound payload for both the self-service and the
// walk-in booking flows. Dates travel as YYYY-MM-DD strings and are parsed
// by the booking engine; contact fields are required only for guest callers.
type BookingRequest struct {
	ServiceID string `json:"service_id,omitempty" validate:"omitempty,mongodb"`
	PackageID string `json:"package_id,omitempty" validate:"omitempty,mongodb"`

	Date     string `json:"appointment_date" validate:"required"`
	TimeSlot string `json:"appointment_time" validate:"required,time_slot"`

	CustomerName  string `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone string `json:"customer_phone,omitempty" validate:"omitempty,pk_phone"`

	Notes string `json:"notes,omitempty" validate:"max=500"`
}

type RescheduleRequest struct {
	Date     string `json:"appointment_date" validate:"required"`
	TimeSlot string `json:"appointment_time" validate:"required,time_slot"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type StatusUpdateRequest struct {
	Status Status `json:"status" validate:"required,oneof=pending confirmed completed cancelled no-show"`
}

type AssignStaffRequest struct {
	StaffID string `json:"staff_id" validate:"required,mongodb"`
}

// AvailabilityResult partitions the slot universe for one date. The two
// lists are disjoint and their union is the full universe.
type AvailabilityResult struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	BookedSlots    []string `json:"booked_slots"`
}
