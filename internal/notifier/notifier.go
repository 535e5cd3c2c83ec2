// Package notifier publishes appointment lifecycle events. Dispatch is
// fire-and-forget: a broker outage never fails the booking that triggered
// the event.
package notifier

import (
	"context"
	"time"

	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

const (
	EventBooked        = "appointment.booked"
	EventCancelled     = "appointment.cancelled"
	EventRescheduled   = "appointment.rescheduled"
	EventStatusChanged = "appointment.status_changed"
	EventStaffAssigned = "appointment.staff_assigned"
)

// Event is the payload published for every lifecycle change.
type Event struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	Date          string    `json:"appointment_date"`
	TimeSlot      string    `json:"appointment_time"`
	SubjectKind   string    `json:"subject_kind"`
	SubjectName   string    `json:"subject_name"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`

	// Set on reschedule events only.
	PreviousDate     string `json:"previous_date,omitempty"`
	PreviousTimeSlot string `json:"previous_time,omitempty"`

	// Set on staff assignment events only.
	StaffName  string `json:"staff_name,omitempty"`
	StaffEmail string `json:"staff_email,omitempty"`
}

// NewEvent builds an event from the appointment's current state.
func NewEvent(eventType string, appointment *model.Appointment) Event {
	return Event{
		Type:          eventType,
		AppointmentID: appointment.ID,
		Date:          appointment.Date.UTC().Format("2006-01-02"),
		TimeSlot:      appointment.TimeSlot,
		SubjectKind:   string(appointment.Subject.Kind),
		SubjectName:   appointment.Subject.DisplayName,
		CustomerName:  appointment.Customer.Name,
		CustomerEmail: appointment.Customer.Email,
		CustomerPhone: appointment.Customer.Phone,
		Status:        string(appointment.Status),
		OccurredAt:    time.Now().UTC(),
	}
}

// Dispatcher delivers an event to whatever transport is configured.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// AsyncDispatcher runs delivery on its own goroutine with its own timeout,
// detached from the request context so a slow broker cannot stall a
// response. Failures are logged and swallowed.
type AsyncDispatcher struct {
	inner   Dispatcher
	log     *logger.Logger
	timeout time.Duration
}

func NewAsyncDispatcher(inner Dispatcher, log *logger.Logger, timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AsyncDispatcher{inner: inner, log: log, timeout: timeout}
}

func (d *AsyncDispatcher) Dispatch(_ context.Context, event Event) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.inner.Dispatch(ctx, event); err != nil {
			d.log.Error("Failed to dispatch notification",
				"event_type", event.Type,
				"appointment_id", event.AppointmentID,
				"error", err,
			)
		}
	}()
	return nil
}

// NoopDispatcher discards events. Used when no broker is configured.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(context.Context, Event) error { return nil }
