package main

import (
	"salonbook/internal/catalog/handler"
	"salonbook/internal/catalog/repository"
	"salonbook/internal/catalog/service"
	"salonbook/pkg/app"
	"salonbook/pkg/config"
)

func main() {
	cfg := config.Load("catalog-service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	catalogRepo := repository.NewMongoCatalogRepository(cfg)
	catalogSvc := service.NewCatalogService(catalogRepo)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, cfg.Log)

	application := app.NewApplication(cfg)
	application.SetApp(catalogHandler)
	application.Run()
}
