package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"salonbook/internal/appointments/repository"
	"salonbook/internal/appointments/validator"
	"salonbook/internal/notifier"
	"salonbook/pkg/auth"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/slots"
)

// CatalogResolver looks up the bookable subject and returns the duration and
// price to snapshot onto the appointment.
type CatalogResolver interface {
	ResolveService(ctx context.Context, id string) (*model.ResolvedSubject, error)
	ResolvePackage(ctx context.Context, id string) (*model.ResolvedSubject, error)
}

type BookingService interface {
	Book(ctx context.Context, actor auth.Actor, req *model.BookingRequest) (*model.Appointment, error)
	BookWalkIn(ctx context.Context, actor auth.Actor, req *model.BookingRequest) (*model.Appointment, error)
	Availability(ctx context.Context, date string) (*model.AvailabilityResult, error)
}

type bookingService struct {
	repo      repository.AppointmentRepository
	locks     repository.SlotLockRepository
	catalog   CatalogResolver
	validator *validator.BookingValidator
	notifier  notifier.Dispatcher
	log       *logger.Logger
	lockTTL   time.Duration
}

func NewBookingService(
	cfg *config.Config,
	repo repository.AppointmentRepository,
	locks repository.SlotLockRepository,
	catalog CatalogResolver,
	dispatcher notifier.Dispatcher,
) BookingService {
	return &bookingService{
		repo:      repo,
		locks:     locks,
		catalog:   catalog,
		validator: validator.New(),
		notifier:  dispatcher,
		log:       cfg.Log,
		lockTTL:   cfg.SlotLockTTL,
	}
}

// Book creates a self-service appointment in pending status. Guests must
// supply contact details; authenticated customers inherit theirs from the
// actor. Online bookings are for services only, packages go through the
// front desk.
func (s *bookingService) Book(ctx context.Context, actor auth.Actor, req *model.BookingRequest) (*model.Appointment, error) {
	return s.book(ctx, actor, req, model.StatusPending, true)
}

// BookWalkIn creates an appointment on behalf of an in-person customer.
// Walk-ins skip the confirmation step, are created confirmed and may book
// either a service or a package.
func (s *bookingService) BookWalkIn(ctx context.Context, actor auth.Actor, req *model.BookingRequest) (*model.Appointment, error) {
	if !actor.CanCreateWalkIn() {
		return nil, apperrors.Forbidden("walk-in bookings require a receptionist, manager or admin role")
	}
	return s.book(ctx, actor, req, model.StatusConfirmed, false)
}

func (s *bookingService) book(ctx context.Context, actor auth.Actor, req *model.BookingRequest, initial model.Status, requireService bool) (*model.Appointment, error) {
	// Walk-ins always carry explicit customer contact details, so they
	// validate under the guest rules even when booked by staff.
	guestContact := actor.IsGuest() || initial == model.StatusConfirmed
	if err := s.validator.ValidateBooking(req, guestContact, requireService); err != nil {
		return nil, err
	}

	date, err := slots.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("appointment_date must be a valid YYYY-MM-DD date")
	}
	if slots.BeforeToday(date, time.Now()) {
		return nil, apperrors.InvalidInput("cannot book an appointment in the past")
	}

	subject, err := s.resolveSubject(ctx, req)
	if err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Date:          date,
		TimeSlot:      req.TimeSlot,
		Subject:       subject.Subject(),
		Customer:      s.customerSnapshot(actor, req),
		Duration:      subject.Duration,
		Price:         subject.Price,
		Notes:         sanitizer.NormalizeNotes(req.Notes),
		PaymentStatus: model.PaymentUnpaid,
		Status:        initial,
	}
	if initial == model.StatusConfirmed {
		now := time.Now().UTC()
		appointment.ConfirmedAt = &now
		appointment.ConfirmedBy = actor.UserID
	}

	if err := s.createWithSlotGuard(ctx, appointment); err != nil {
		return nil, err
	}

	s.dispatch(ctx, notifier.EventBooked, appointment)
	return appointment, nil
}

// createWithSlotGuard serializes the check-then-insert for one slot: an
// advisory lock keyed by (date, time) fences concurrent requests, then a
// transaction re-verifies the slot and inserts. The partial unique index on
// (appointment_date, time_slot) is the storage-level backstop.
func (s *bookingService) createWithSlotGuard(ctx context.Context, appointment *model.Appointment) error {
	lock := &model.SlotLock{
		ID:        model.SlotLockID(appointment.Date, appointment.TimeSlot),
		ExpiresAt: time.Now().Add(s.lockTTL),
	}

	if _, err := s.locks.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("this time slot is currently being booked, please try again")
		}
		return storageFailure(err, "failed to acquire slot lock")
	}
	defer func() {
		if err := s.locks.Delete(context.WithoutCancel(ctx), lock.ID); err != nil {
			s.log.Warn("Failed to release slot lock, TTL index will reclaim it",
				"lock_id", lock.ID, "error", err)
		}
	}()

	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		free, err := s.repo.IsSlotFree(sc, appointment.Date, appointment.TimeSlot, "")
		if err != nil {
			return err
		}
		if !free {
			return apperrors.Conflict(fmt.Sprintf("time slot %s is already booked on %s",
				appointment.TimeSlot, appointment.Date.Format(slots.DateLayout)))
		}
		return s.repo.Create(sc, appointment)
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("time slot was just booked by another customer")
		}
		return storageFailure(err, "failed to create appointment")
	}

	return nil
}

// storageFailure separates slow or unreachable storage from genuine faults
// so clients see a retryable 504 or 503 instead of an opaque 500.
func storageFailure(err error, message string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message)
	case errors.Is(err, mongo.ErrClientDisconnected):
		return apperrors.Unavailable("appointment storage")
	default:
		return apperrors.Internal(message, err)
	}
}

func (s *bookingService) resolveSubject(ctx context.Context, req *model.BookingRequest) (*model.ResolvedSubject, error) {
	if req.ServiceID != "" {
		return s.catalog.ResolveService(ctx, req.ServiceID)
	}
	return s.catalog.ResolvePackage(ctx, req.PackageID)
}

// customerSnapshot captures the customer identity at booking time. Request
// fields win over actor fields so staff can correct details on the spot.
func (s *bookingService) customerSnapshot(actor auth.Actor, req *model.BookingRequest) model.CustomerSnapshot {
	snapshot := model.CustomerSnapshot{
		Name:  sanitizer.NormalizeName(req.CustomerName),
		Email: sanitizer.NormalizeEmail(req.CustomerEmail),
		Phone: sanitizer.NormalizePhone(req.CustomerPhone),
	}
	if !actor.IsGuest() && !actor.IsStaff() {
		snapshot.UserID = actor.UserID
		if snapshot.Name == "" {
			snapshot.Name = sanitizer.NormalizeName(actor.Name)
		}
		if snapshot.Email == "" {
			snapshot.Email = sanitizer.NormalizeEmail(actor.Email)
		}
		if snapshot.Phone == "" {
			snapshot.Phone = sanitizer.NormalizePhone(actor.Phone)
		}
	}
	return snapshot
}

// Availability partitions the slot universe for one date into booked and
// available. The universe is fixed, so the two lists always reunite to the
// full day.
func (s *bookingService) Availability(ctx context.Context, dateStr string) (*model.AvailabilityResult, error) {
	date, err := slots.ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be a valid YYYY-MM-DD date")
	}

	booked, err := s.repo.FindBookedSlots(ctx, date)
	if err != nil {
		return nil, storageFailure(err, "failed to load booked slots")
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, slot := range booked {
		bookedSet[slot] = struct{}{}
	}

	// Walk the universe once so both lists come back sorted and stray
	// out-of-universe values in storage never leak into the response.
	universe := slots.Generate()
	available := make([]string, 0, len(universe))
	taken := make([]string, 0, len(booked))
	for _, slot := range universe {
		if _, ok := bookedSet[slot]; ok {
			taken = append(taken, slot)
		} else {
			available = append(available, slot)
		}
	}

	return &model.AvailabilityResult{
		Date:           date.Format(slots.DateLayout),
		AvailableSlots: available,
		BookedSlots:    taken,
	}, nil
}

func (s *bookingService) dispatch(ctx context.Context, eventType string, appointment *model.Appointment) {
	if err := s.notifier.Dispatch(ctx, notifier.NewEvent(eventType, appointment)); err != nil {
		s.log.Error("Failed to dispatch event", "event_type", eventType,
			"appointment_id", appointment.ID, "error", err)
	}
}
