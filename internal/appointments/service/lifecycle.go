package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/internal/appointments/repository"
	"salonbook/internal/appointments/validator"
	"salonbook/internal/notifier"
	userserrors "salonbook/internal/users/errors"
	"salonbook/pkg/auth"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/slots"
)

// StaffDirectory resolves users for staff assignment checks.
type StaffDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type LifecycleService interface {
	GetByID(ctx context.Context, actor auth.Actor, id string) (*model.Appointment, error)
	List(ctx context.Context, actor auth.Actor, limit int, offset int64) ([]*model.Appointment, int64, error)
	Cancel(ctx context.Context, actor auth.Actor, id string, req *model.CancelRequest) (*model.Appointment, error)
	Reschedule(ctx context.Context, actor auth.Actor, id string, req *model.RescheduleRequest) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id string, req *model.StatusUpdateRequest) (*model.Appointment, error)
	AssignStaff(ctx context.Context, actor auth.Actor, id string, req *model.AssignStaffRequest) (*model.Appointment, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
}

type lifecycleService struct {
	repo      repository.AppointmentRepository
	locks     repository.SlotLockRepository
	staff     StaffDirectory
	validator *validator.BookingValidator
	notifier  notifier.Dispatcher
	log       *logger.Logger
	lockTTL   time.Duration
}

func NewLifecycleService(
	cfg *config.Config,
	repo repository.AppointmentRepository,
	locks repository.SlotLockRepository,
	staff StaffDirectory,
	dispatcher notifier.Dispatcher,
) LifecycleService {
	return &lifecycleService{
		repo:      repo,
		locks:     locks,
		staff:     staff,
		validator: validator.New(),
		notifier:  dispatcher,
		log:       cfg.Log,
		lockTTL:   cfg.SlotLockTTL,
	}
}

func (s *lifecycleService) GetByID(ctx context.Context, actor auth.Actor, id string) (*model.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && !appointment.OwnedBy(actor.UserID, actor.Email) {
		return nil, apperrors.Forbidden("you can only view your own appointments")
	}

	return appointment, nil
}

func (s *lifecycleService) List(ctx context.Context, actor auth.Actor, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if !actor.IsStaff() {
		return nil, 0, apperrors.Forbidden("listing appointments requires a staff role")
	}

	appointments, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, storageFailure(err, "failed to list appointments")
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, storageFailure(err, "failed to count appointments")
	}

	return appointments, total, nil
}

// Cancel is a soft delete: the record survives with cancelled status and an
// audit trail of who cancelled and why.
func (s *lifecycleService) Cancel(ctx context.Context, actor auth.Actor, id string, req *model.CancelRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, err
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && !appointment.OwnedBy(actor.UserID, actor.Email) {
		return nil, apperrors.Forbidden("you can only cancel your own appointments")
	}
	if slots.BeforeToday(appointment.Date, time.Now()) {
		return nil, apperrors.InvalidInput("cannot cancel an appointment in the past")
	}
	if !appointment.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(model.StatusCancelled))
	}

	now := time.Now().UTC()
	appointment.Status = model.StatusCancelled
	appointment.CancellationReason = sanitizer.NormalizeNotes(req.Reason)
	appointment.CancelledAt = &now
	appointment.CancelledBy = s.actorRef(actor, appointment)

	if err := s.repo.Update(ctx, id, appointment); err != nil {
		return nil, s.mapRepoError(err, id)
	}

	s.dispatch(ctx, notifier.EventCancelled, appointment)
	return appointment, nil
}

// Reschedule moves an appointment to a new slot under the same lock and
// transaction discipline as booking. The slot-free check excludes the
// appointment itself so moving within the same slot's day never self-conflicts.
func (s *lifecycleService) Reschedule(ctx context.Context, actor auth.Actor, id string, req *model.RescheduleRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateReschedule(req); err != nil {
		return nil, err
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && !appointment.OwnedBy(actor.UserID, actor.Email) {
		return nil, apperrors.Forbidden("you can only reschedule your own appointments")
	}
	if appointment.Status != model.StatusPending && appointment.Status != model.StatusConfirmed {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(appointment.Status))
	}

	date, err := slots.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("appointment_date must be a valid YYYY-MM-DD date")
	}
	if slots.BeforeToday(date, time.Now()) {
		return nil, apperrors.InvalidInput("cannot reschedule an appointment into the past")
	}

	previousDate := appointment.Date
	previousSlot := appointment.TimeSlot

	lock := &model.SlotLock{
		ID:        model.SlotLockID(date, req.TimeSlot),
		ExpiresAt: time.Now().Add(s.lockTTL),
	}
	if _, err := s.locks.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("this time slot is currently being booked, please try again")
		}
		return nil, storageFailure(err, "failed to acquire slot lock")
	}
	defer func() {
		if err := s.locks.Delete(context.WithoutCancel(ctx), lock.ID); err != nil {
			s.log.Warn("Failed to release slot lock, TTL index will reclaim it",
				"lock_id", lock.ID, "error", err)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		free, err := s.repo.IsSlotFree(sc, date, req.TimeSlot, id)
		if err != nil {
			return err
		}
		if !free {
			return apperrors.Conflict(fmt.Sprintf("time slot %s is already booked on %s",
				req.TimeSlot, date.Format(slots.DateLayout)))
		}

		appointment.Date = date
		appointment.TimeSlot = req.TimeSlot
		return s.repo.Update(sc, id, appointment)
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return nil, appErr
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("time slot was just booked by another customer")
		}
		return nil, s.mapRepoError(err, id)
	}

	event := notifier.NewEvent(notifier.EventRescheduled, appointment)
	event.PreviousDate = previousDate.UTC().Format(slots.DateLayout)
	event.PreviousTimeSlot = previousSlot
	s.dispatchEvent(ctx, event)

	return appointment, nil
}

func (s *lifecycleService) UpdateStatus(ctx context.Context, actor auth.Actor, id string, req *model.StatusUpdateRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateStatusUpdate(req); err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("updating appointment status requires a staff role")
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(req.Status))
	}

	now := time.Now().UTC()
	appointment.Status = req.Status
	switch req.Status {
	case model.StatusConfirmed:
		appointment.ConfirmedAt = &now
		appointment.ConfirmedBy = actor.UserID
	case model.StatusCancelled:
		appointment.CancelledAt = &now
		appointment.CancelledBy = actor.UserID
	}

	if err := s.repo.Update(ctx, id, appointment); err != nil {
		return nil, s.mapRepoError(err, id)
	}

	s.dispatch(ctx, notifier.EventStatusChanged, appointment)
	return appointment, nil
}

func (s *lifecycleService) AssignStaff(ctx context.Context, actor auth.Actor, id string, req *model.AssignStaffRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateAssignStaff(req); err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("assigning staff requires a staff role")
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.IsCancelled() {
		return nil, apperrors.InvalidInput("cannot assign staff to a cancelled appointment")
	}

	member, err := s.staff.FindByID(ctx, req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, userserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("staff member", req.StaffID)
		case errors.Is(err, userserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("staff id is not a valid object id")
		default:
			return nil, storageFailure(err, "failed to look up staff member")
		}
	}
	if !member.StaffAssignable() {
		return nil, apperrors.InvalidInput("user is not an assignable staff member")
	}

	appointment.StaffID = member.ID

	if err := s.repo.Update(ctx, id, appointment); err != nil {
		return nil, s.mapRepoError(err, id)
	}

	// Staff without an email address have nowhere to receive the
	// assignment, so no event goes out for them.
	if member.Email != "" {
		event := notifier.NewEvent(notifier.EventStaffAssigned, appointment)
		event.StaffName = member.Name
		event.StaffEmail = member.Email
		s.dispatchEvent(ctx, event)
	}
	return appointment, nil
}

// Delete removes the record entirely. Reserved for correcting mistakes at
// the desk; customers cancel instead.
func (s *lifecycleService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.CanHardDelete() {
		return apperrors.Forbidden("deleting appointments requires a receptionist or admin role")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id)
	}
	return nil
}

func (s *lifecycleService) load(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return appointment, nil
}

func (s *lifecycleService) mapRepoError(err error, id string) error {
	switch {
	case errors.Is(err, appointmentserrors.ErrNotFound):
		return apperrors.NotFoundWithID("appointment", id)
	case errors.Is(err, appointmentserrors.ErrInvalidID):
		return apperrors.InvalidInput("appointment id is not a valid object id")
	default:
		return storageFailure(err, "appointment operation failed")
	}
}

// actorRef records who performed a cancellation. Guests have no user id, so
// the snapshotted email stands in.
func (s *lifecycleService) actorRef(actor auth.Actor, appointment *model.Appointment) string {
	if actor.UserID != "" {
		return actor.UserID
	}
	return appointment.Customer.Email
}

func (s *lifecycleService) dispatch(ctx context.Context, eventType string, appointment *model.Appointment) {
	s.dispatchEvent(ctx, notifier.NewEvent(eventType, appointment))
}

func (s *lifecycleService) dispatchEvent(ctx context.Context, event notifier.Event) {
	if err := s.notifier.Dispatch(ctx, event); err != nil {
		s.log.Error("Failed to dispatch event", "event_type", event.Type,
			"appointment_id", event.AppointmentID, "error", err)
	}
}
