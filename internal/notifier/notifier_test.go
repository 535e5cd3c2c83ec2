package notifier

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
	err    error
	done   chan struct{}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer close(d.done)
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard, Format: logger.TEXT})
}

func TestNewEvent(t *testing.T) {
	appointment := &model.Appointment{
		ID:       "a1",
		Date:     time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot: "14:30",
		Subject:  model.Subject{Kind: model.SubjectService, RefID: "s1", DisplayName: "Haircut"},
		Customer: model.CustomerSnapshot{Name: "Ayesha", Email: "a@example.com", Phone: "+923001234567"},
		Status:   model.StatusPending,
	}

	event := NewEvent(EventBooked, appointment)

	if event.Type != EventBooked {
		t.Errorf("type = %s", event.Type)
	}
	if event.Date != "2030-06-15" || event.TimeSlot != "14:30" {
		t.Errorf("slot coordinates wrong: %s %s", event.Date, event.TimeSlot)
	}
	if event.SubjectName != "Haircut" || event.SubjectKind != "service" {
		t.Errorf("subject wrong: %s %s", event.SubjectKind, event.SubjectName)
	}
	if event.OccurredAt.IsZero() {
		t.Error("occurred_at not set")
	}
}

func TestAsyncDispatcherDelivers(t *testing.T) {
	inner := &recordingDispatcher{done: make(chan struct{})}
	d := NewAsyncDispatcher(inner, testLogger(), time.Second)

	if err := d.Dispatch(context.Background(), Event{Type: EventBooked, AppointmentID: "a1"}); err != nil {
		t.Fatalf("async dispatch should never return an error, got %v", err)
	}

	select {
	case <-inner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the inner dispatcher")
	}

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.events) != 1 || inner.events[0].AppointmentID != "a1" {
		t.Errorf("unexpected events: %v", inner.events)
	}
}

func TestAsyncDispatcherSwallowsFailure(t *testing.T) {
	inner := &recordingDispatcher{err: errors.New("broker down"), done: make(chan struct{})}
	d := NewAsyncDispatcher(inner, testLogger(), time.Second)

	if err := d.Dispatch(context.Background(), Event{Type: EventBooked, AppointmentID: "a1"}); err != nil {
		t.Fatalf("failure should be swallowed, got %v", err)
	}

	select {
	case <-inner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("inner dispatcher never invoked")
	}
}

func TestAsyncDispatcherDetachedFromCaller(t *testing.T) {
	inner := &recordingDispatcher{done: make(chan struct{})}
	d := NewAsyncDispatcher(inner, testLogger(), time.Second)

	// A cancelled request context must not prevent delivery.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Dispatch(ctx, Event{Type: EventCancelled, AppointmentID: "a2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-inner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery should proceed despite cancelled caller context")
	}
}

func TestNoopDispatcher(t *testing.T) {
	if err := (NoopDispatcher{}).Dispatch(context.Background(), Event{}); err != nil {
		t.Fatalf("noop dispatcher returned %v", err)
	}
}
