package main

import (
	"context"
	"time"

	migrations "salonbook/internal/migrations/mongo"
	"salonbook/pkg/config"
)

func main() {
	cfg := config.Load("migrate")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrator := migrations.NewMigrator(cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	if err := migrator.Run(ctx); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}
