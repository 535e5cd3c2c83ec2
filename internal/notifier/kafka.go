package notifier

import (
	"context"

	"salonbook/pkg/kafka"
)

const sourceService = "appointments-service"

// KafkaDispatcher publishes events through the shared producer. Events are
// keyed by appointment id so every event for one appointment lands on the
// same partition, in order.
type KafkaDispatcher struct {
	producer *kafka.Producer
}

func NewKafkaDispatcher(producer *kafka.Producer) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	msg := kafka.NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(sourceService).
		Build()

	return d.producer.Publish(ctx, msg)
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
