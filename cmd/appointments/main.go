package main

import (
	"salonbook/internal/appointments/handler"
	"salonbook/internal/appointments/repository"
	appointmentsservice "salonbook/internal/appointments/service"
	catalogrepository "salonbook/internal/catalog/repository"
	catalogservice "salonbook/internal/catalog/service"
	"salonbook/internal/notifier"
	usersrepository "salonbook/internal/users/repository"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
	"salonbook/pkg/kafka"
	kafkaconfig "salonbook/pkg/kafka/config"
	kafkamiddleware "salonbook/pkg/kafka/middleware"
)

func main() {
	cfg := config.Load("appointments-service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	dispatcher := buildDispatcher(cfg)

	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	slotLockRepo := repository.NewSlotLockRepository(cfg)
	catalogRepo := catalogrepository.NewMongoCatalogRepository(cfg)
	userRepo := usersrepository.NewMongoUserRepository(cfg)

	catalogSvc := catalogservice.NewCatalogService(catalogRepo)
	bookingSvc := appointmentsservice.NewBookingService(cfg, appointmentRepo, slotLockRepo, catalogSvc, dispatcher)
	lifecycleSvc := appointmentsservice.NewLifecycleService(cfg, appointmentRepo, slotLockRepo, userRepo, dispatcher)

	appointmentHandler := handler.NewAppointmentHandler(bookingSvc, lifecycleSvc, cfg.Log)

	application := app.NewApplication(cfg)
	application.SetApp(appointmentHandler)
	application.Run()
}

func buildDispatcher(cfg *config.Config) notifier.Dispatcher {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, appointment events will not be published")
		return notifier.NoopDispatcher{}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.Topic, kafkaCfg.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	return notifier.NewAsyncDispatcher(notifier.NewKafkaDispatcher(producer), cfg.Log, cfg.RequestTimeout)
}
