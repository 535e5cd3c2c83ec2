package service

import (
	"context"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "salonbook/internal/appointments/errors"
	"salonbook/internal/notifier"
	"salonbook/pkg/config"
	mongotx "salonbook/pkg/db/mongo"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		SlotLockTTL:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Log: logger.New(logger.Config{
			Output: io.Discard,
			Format: logger.TEXT,
		}),
	}
}

type mockAppointmentRepo struct {
	createFn          func(ctx context.Context, a *model.Appointment) error
	findByIDFn        func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFn         func(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error)
	findByDayFn       func(ctx context.Context, date time.Time) ([]*model.Appointment, error)
	findBookedSlotsFn func(ctx context.Context, date time.Time) ([]string, error)
	isSlotFreeFn      func(ctx context.Context, date time.Time, timeSlot, excludeID string) (bool, error)
	updateFn          func(ctx context.Context, id string, a *model.Appointment) error
	deleteFn          func(ctx context.Context, id string) error
	countFn           func(ctx context.Context) (int64, error)
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	a.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, appointmentserrors.ErrNotFound
}

func (m *mockAppointmentRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) FindByDay(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	if m.findByDayFn != nil {
		return m.findByDayFn(ctx, date)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) FindBookedSlots(ctx context.Context, date time.Time) ([]string, error) {
	if m.findBookedSlotsFn != nil {
		return m.findBookedSlotsFn(ctx, date)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) IsSlotFree(ctx context.Context, date time.Time, timeSlot, excludeID string) (bool, error) {
	if m.isSlotFreeFn != nil {
		return m.isSlotFreeFn(ctx, date, timeSlot, excludeID)
	}
	return true, nil
}

func (m *mockAppointmentRepo) Update(ctx context.Context, id string, a *model.Appointment) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, a)
	}
	return nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockAppointmentRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

// ExecuteTransaction runs the function directly; the mock has no real
// session so callbacks receive a nil SessionContext they must not touch.
func (m *mockAppointmentRepo) ExecuteTransaction(_ context.Context, fn mongotx.TransactionFunc) error {
	var sc mongo.SessionContext
	return fn(sc)
}

type mockSlotLockRepo struct {
	mu       sync.Mutex
	createFn func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleted  []string
}

func (m *mockSlotLockRepo) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepo) Delete(_ context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, lockID)
	return nil
}

func (m *mockSlotLockRepo) deletedLocks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type mockCatalog struct {
	resolveServiceFn func(ctx context.Context, id string) (*model.ResolvedSubject, error)
	resolvePackageFn func(ctx context.Context, id string) (*model.ResolvedSubject, error)
}

func (m *mockCatalog) ResolveService(ctx context.Context, id string) (*model.ResolvedSubject, error) {
	if m.resolveServiceFn != nil {
		return m.resolveServiceFn(ctx, id)
	}
	return &model.ResolvedSubject{
		Kind:        model.SubjectService,
		RefID:       id,
		DisplayName: "Haircut",
		Duration:    30,
		Price:       1500,
	}, nil
}

func (m *mockCatalog) ResolvePackage(ctx context.Context, id string) (*model.ResolvedSubject, error) {
	if m.resolvePackageFn != nil {
		return m.resolvePackageFn(ctx, id)
	}
	return &model.ResolvedSubject{
		Kind:        model.SubjectPackage,
		RefID:       id,
		DisplayName: "Bridal Package",
		Duration:    180,
		Price:       25000,
	}, nil
}

type mockStaffDirectory struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockStaffDirectory) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "Sana", Email: "sana@salon.pk", Role: model.RoleStaff}, nil
}

type mockDispatcher struct {
	mu     sync.Mutex
	events []notifier.Event
	err    error
}

func (m *mockDispatcher) Dispatch(_ context.Context, event notifier.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockDispatcher) dispatched() []notifier.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifier.Event(nil), m.events...)
}
