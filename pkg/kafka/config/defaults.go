package kafka_config

import "time"

const (
	DefaultKafkaEnabled  = false
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultKafkaTopic    = "appointment.events"
	DefaultKafkaDLQTopic = "appointment.events.dlq"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
