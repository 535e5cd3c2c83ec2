package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/internal/notifier"
	userserrors "salonbook/internal/users/errors"
	"salonbook/pkg/auth"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

const (
	appointmentID = "665f1f77bcf86cd799439010"
	ownerUserID   = "665f1f77bcf86cd799439020"
	staffUserID   = "665f1f77bcf86cd799439030"
)

func futureDate() time.Time {
	return time.Now().UTC().AddDate(0, 1, 0).Truncate(24 * time.Hour)
}

func storedAppointment(status model.Status) *model.Appointment {
	return &model.Appointment{
		ID:       appointmentID,
		Date:     futureDate(),
		TimeSlot: "14:30",
		Subject:  model.Subject{Kind: model.SubjectService, RefID: serviceID, DisplayName: "Haircut"},
		Customer: model.CustomerSnapshot{
			UserID: ownerUserID,
			Name:   "Ayesha Khan",
			Email:  "ayesha@example.com",
			Phone:  "+923001234567",
		},
		Duration:      30,
		Price:         1500,
		PaymentStatus: model.PaymentUnpaid,
		Status:        status,
	}
}

func repoWith(appointment *model.Appointment) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Appointment, error) {
			if id == appointment.ID {
				copied := *appointment
				return &copied, nil
			}
			return nil, appointmentserrors.ErrNotFound
		},
	}
}

func newLifecycleService(repo *mockAppointmentRepo, locks *mockSlotLockRepo, staff *mockStaffDirectory, dispatcher *mockDispatcher) LifecycleService {
	return NewLifecycleService(testConfig(), repo, locks, staff, dispatcher)
}

func owner() auth.Actor {
	return auth.Actor{UserID: ownerUserID, Role: model.RoleCustomer, Email: "ayesha@example.com"}
}

func staffActor() auth.Actor {
	return auth.Actor{UserID: staffUserID, Role: model.RoleStaff}
}

func TestCancelByOwner(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	dispatcher := &mockDispatcher{}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, dispatcher)

	appointment, err := svc.Cancel(context.Background(), owner(), appointmentID, &model.CancelRequest{Reason: "  travel plans  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appointment.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", appointment.Status)
	}
	if appointment.CancellationReason != "travel plans" {
		t.Errorf("reason not normalized: %q", appointment.CancellationReason)
	}
	if appointment.CancelledAt == nil {
		t.Error("cancellation time not recorded")
	}
	if appointment.CancelledBy != ownerUserID {
		t.Errorf("expected cancelled_by %s, got %s", ownerUserID, appointment.CancelledBy)
	}

	events := dispatcher.dispatched()
	if len(events) != 1 || events[0].Type != notifier.EventCancelled {
		t.Errorf("expected one cancelled event, got %v", events)
	}
}

func TestCancelByGuestEmailMatch(t *testing.T) {
	stored := storedAppointment(model.StatusPending)
	stored.Customer.UserID = ""
	repo := repoWith(stored)
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	guest := auth.Actor{Email: "ayesha@example.com"}
	appointment, err := svc.Cancel(context.Background(), guest, appointmentID, &model.CancelRequest{})
	if err != nil {
		t.Fatalf("guest should cancel via snapshotted email: %v", err)
	}
	if appointment.CancelledBy != "ayesha@example.com" {
		t.Errorf("guest cancellations record the email, got %q", appointment.CancelledBy)
	}
}

func TestCancelByStranger(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	stranger := auth.Actor{UserID: "665f1f77bcf86cd799439099", Role: model.RoleCustomer}
	_, err := svc.Cancel(context.Background(), stranger, appointmentID, &model.CancelRequest{})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancelPastAppointment(t *testing.T) {
	stored := storedAppointment(model.StatusConfirmed)
	stored.Date = time.Now().UTC().AddDate(0, 0, -2)
	repo := repoWith(stored)
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	_, err := svc.Cancel(context.Background(), owner(), appointmentID, &model.CancelRequest{})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input for past appointment, got %v", err)
	}
}

func TestCancelInvalidTransition(t *testing.T) {
	for _, status := range []model.Status{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow} {
		t.Run(string(status), func(t *testing.T) {
			repo := repoWith(storedAppointment(status))
			svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

			_, err := svc.Cancel(context.Background(), staffActor(), appointmentID, &model.CancelRequest{})
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeInvalidTransition {
				t.Fatalf("expected invalid transition, got %v", err)
			}
		})
	}
}

func TestRescheduleByOwner(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusConfirmed))
	locks := &mockSlotLockRepo{}
	dispatcher := &mockDispatcher{}
	svc := newLifecycleService(repo, locks, &mockStaffDirectory{}, dispatcher)

	newDate := futureDate().AddDate(0, 0, 7)
	req := &model.RescheduleRequest{Date: newDate.Format("2006-01-02"), TimeSlot: "10:00"}

	appointment, err := svc.Reschedule(context.Background(), owner(), appointmentID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appointment.TimeSlot != "10:00" {
		t.Errorf("slot not moved: %s", appointment.TimeSlot)
	}
	if !appointment.Date.Equal(newDate) {
		t.Errorf("date not moved: %v", appointment.Date)
	}
	if appointment.Status != model.StatusConfirmed {
		t.Errorf("reschedule should preserve status, got %s", appointment.Status)
	}

	events := dispatcher.dispatched()
	if len(events) != 1 || events[0].Type != notifier.EventRescheduled {
		t.Fatalf("expected one rescheduled event, got %v", events)
	}
	if events[0].PreviousTimeSlot != "14:30" {
		t.Errorf("event should carry the previous slot, got %q", events[0].PreviousTimeSlot)
	}
	if len(locks.deletedLocks()) != 1 {
		t.Error("slot lock should be released after reschedule")
	}
}

func TestRescheduleExcludesSelf(t *testing.T) {
	stored := storedAppointment(model.StatusPending)
	repo := repoWith(stored)
	var gotExclude string
	repo.isSlotFreeFn = func(_ context.Context, _ time.Time, _, excludeID string) (bool, error) {
		gotExclude = excludeID
		return true, nil
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	req := &model.RescheduleRequest{Date: stored.Date.Format("2006-01-02"), TimeSlot: "15:00"}
	if _, err := svc.Reschedule(context.Background(), owner(), appointmentID, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotExclude != appointmentID {
		t.Errorf("slot check should exclude the appointment itself, got %q", gotExclude)
	}
}

func TestRescheduleConflict(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	repo.isSlotFreeFn = func(_ context.Context, _ time.Time, _, _ string) (bool, error) {
		return false, nil
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	req := &model.RescheduleRequest{Date: futureDate().Format("2006-01-02"), TimeSlot: "15:00"}
	_, err := svc.Reschedule(context.Background(), owner(), appointmentID, req)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRescheduleTerminalStatus(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusCancelled))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	req := &model.RescheduleRequest{Date: futureDate().Format("2006-01-02"), TimeSlot: "15:00"}
	_, err := svc.Reschedule(context.Background(), staffActor(), appointmentID, req)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestReschedulePastTarget(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	req := &model.RescheduleRequest{Date: "2020-01-01", TimeSlot: "15:00"}
	_, err := svc.Reschedule(context.Background(), owner(), appointmentID, req)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     model.Status
		to       model.Status
		wantCode string
	}{
		{"pending to confirmed", model.StatusPending, model.StatusConfirmed, ""},
		{"confirmed to completed", model.StatusConfirmed, model.StatusCompleted, ""},
		{"confirmed to no-show", model.StatusConfirmed, model.StatusNoShow, ""},
		{"pending to completed", model.StatusPending, model.StatusCompleted, apperrors.CodeInvalidTransition},
		{"completed to pending", model.StatusCompleted, model.StatusPending, apperrors.CodeInvalidTransition},
		{"cancelled to confirmed", model.StatusCancelled, model.StatusConfirmed, apperrors.CodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoWith(storedAppointment(tt.from))
			svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

			appointment, err := svc.UpdateStatus(context.Background(), staffActor(), appointmentID, &model.StatusUpdateRequest{Status: tt.to})
			if tt.wantCode != "" {
				appErr, ok := err.(*apperrors.AppError)
				if !ok || appErr.Code != tt.wantCode {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if appointment.Status != tt.to {
				t.Errorf("status = %s, want %s", appointment.Status, tt.to)
			}
		})
	}
}

func TestUpdateStatusRecordsConfirmation(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	appointment, err := svc.UpdateStatus(context.Background(), staffActor(), appointmentID, &model.StatusUpdateRequest{Status: model.StatusConfirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.ConfirmedAt == nil || appointment.ConfirmedBy != staffUserID {
		t.Errorf("confirmation audit not recorded: at=%v by=%q", appointment.ConfirmedAt, appointment.ConfirmedBy)
	}
}

func TestUpdateStatusRequiresStaff(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	_, err := svc.UpdateStatus(context.Background(), owner(), appointmentID, &model.StatusUpdateRequest{Status: model.StatusConfirmed})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignStaff(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusConfirmed))
	dispatcher := &mockDispatcher{}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, dispatcher)

	appointment, err := svc.AssignStaff(context.Background(), staffActor(), appointmentID, &model.AssignStaffRequest{StaffID: staffUserID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.StaffID != staffUserID {
		t.Errorf("staff not assigned: %q", appointment.StaffID)
	}

	events := dispatcher.dispatched()
	if len(events) != 1 || events[0].Type != notifier.EventStaffAssigned {
		t.Fatalf("expected staff assigned event, got %v", events)
	}
	if events[0].StaffName != "Sana" || events[0].StaffEmail != "sana@salon.pk" {
		t.Errorf("event missing staff contact: %+v", events[0])
	}
}

func TestAssignStaffWithoutEmailSkipsNotification(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusConfirmed))
	dispatcher := &mockDispatcher{}
	staff := &mockStaffDirectory{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Bilal", Role: model.RoleStaff}, nil
		},
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, staff, dispatcher)

	appointment, err := svc.AssignStaff(context.Background(), staffActor(), appointmentID, &model.AssignStaffRequest{StaffID: staffUserID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.StaffID != staffUserID {
		t.Errorf("staff not assigned: %q", appointment.StaffID)
	}
	if len(dispatcher.dispatched()) != 0 {
		t.Error("no event should go out for a staff member without an email")
	}
}

func TestAssignStaffRejectsNonAssignableRoles(t *testing.T) {
	for _, role := range []model.Role{model.RoleCustomer, model.RoleReceptionist, model.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			repo := repoWith(storedAppointment(model.StatusConfirmed))
			staff := &mockStaffDirectory{
				findByIDFn: func(_ context.Context, id string) (*model.User, error) {
					return &model.User{ID: id, Name: "Someone", Email: "x@salon.pk", Role: role}, nil
				},
			}
			svc := newLifecycleService(repo, &mockSlotLockRepo{}, staff, &mockDispatcher{})

			_, err := svc.AssignStaff(context.Background(), staffActor(), appointmentID, &model.AssignStaffRequest{StaffID: staffUserID})
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeInvalidInput {
				t.Fatalf("expected invalid input for role %s, got %v", role, err)
			}
		})
	}
}

func TestAssignStaffUnknownUser(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusConfirmed))
	staff := &mockStaffDirectory{
		findByIDFn: func(context.Context, string) (*model.User, error) {
			return nil, userserrors.ErrNotFound
		},
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, staff, &mockDispatcher{})

	_, err := svc.AssignStaff(context.Background(), staffActor(), appointmentID, &model.AssignStaffRequest{StaffID: staffUserID})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignStaffToCancelledAppointment(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusCancelled))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	_, err := svc.AssignStaff(context.Background(), staffActor(), appointmentID, &model.AssignStaffRequest{StaffID: staffUserID})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestGetByIDOwnership(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	if _, err := svc.GetByID(context.Background(), owner(), appointmentID); err != nil {
		t.Errorf("owner should read own appointment: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), staffActor(), appointmentID); err != nil {
		t.Errorf("staff should read any appointment: %v", err)
	}

	stranger := auth.Actor{UserID: "665f1f77bcf86cd799439099", Role: model.RoleCustomer}
	_, err := svc.GetByID(context.Background(), stranger, appointmentID)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newLifecycleService(&mockAppointmentRepo{}, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	_, err := svc.GetByID(context.Background(), staffActor(), "665f1f77bcf86cd799439098")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDStorageFailures(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"deadline exceeded", fmt.Errorf("find appointment: %w", context.DeadlineExceeded), apperrors.CodeTimeout},
		{"client disconnected", mongo.ErrClientDisconnected, apperrors.CodeUnavailable},
		{"anything else", fmt.Errorf("cursor error"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAppointmentRepo{
				findByIDFn: func(context.Context, string) (*model.Appointment, error) {
					return nil, tt.repoErr
				},
			}
			svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

			_, err := svc.GetByID(context.Background(), staffActor(), appointmentID)
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestListRequiresStaff(t *testing.T) {
	repo := &mockAppointmentRepo{
		findAllFn: func(context.Context, int, int64) ([]*model.Appointment, error) {
			return []*model.Appointment{storedAppointment(model.StatusPending)}, nil
		},
		countFn: func(context.Context) (int64, error) { return 1, nil },
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	appointments, total, err := svc.List(context.Background(), staffActor(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appointments) != 1 || total != 1 {
		t.Errorf("unexpected result: %d appointments, total %d", len(appointments), total)
	}

	_, _, err = svc.List(context.Background(), owner(), 10, 0)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteRequiresDeskRole(t *testing.T) {
	repo := repoWith(storedAppointment(model.StatusPending))
	deleted := false
	repo.deleteFn = func(_ context.Context, id string) error {
		deleted = true
		return nil
	}
	svc := newLifecycleService(repo, &mockSlotLockRepo{}, &mockStaffDirectory{}, &mockDispatcher{})

	if err := svc.Delete(context.Background(), auth.Actor{UserID: "u1", Role: model.RoleAdmin}, appointmentID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if !deleted {
		t.Error("repository delete not invoked")
	}

	err := svc.Delete(context.Background(), staffActor(), appointmentID)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("staff should not hard-delete, got %v", err)
	}
}
