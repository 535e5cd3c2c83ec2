package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/pkg/config"
	"salonbook/pkg/model"
)

const (
	ServicesCollection = "Services"
	PackagesCollection = "Packages"
)

type CatalogRepository interface {
	FindServiceByID(ctx context.Context, id string) (*model.Service, error)
	FindPackageByID(ctx context.Context, id string) (*model.Package, error)
	FindServices(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	FindPackages(ctx context.Context, activeOnly bool) ([]*model.Package, error)
}

type mongoCatalogRepository struct {
	cfg      *config.Config
	services *mongo.Collection
	packages *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:      cfg,
		services: db.Collection(ServicesCollection),
		packages: db.Collection(PackagesCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoCatalogRepository) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var service model.Service
	err = r.services.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

func (r *mongoCatalogRepository) FindPackageByID(ctx context.Context, id string) (*model.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var pkg model.Package
	err = r.packages.FindOne(ctx, bson.M{"_id": objectID}).Decode(&pkg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find package: %w", err)
	}

	return &pkg, nil
}

func (r *mongoCatalogRepository) FindServices(ctx context.Context, activeOnly bool) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.services.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func (r *mongoCatalogRepository) FindPackages(ctx context.Context, activeOnly bool) ([]*model.Package, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.packages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find packages: %w", err)
	}
	defer cursor.Close(ctx)

	var packages []*model.Package
	if err = cursor.All(ctx, &packages); err != nil {
		return nil, fmt.Errorf("failed to decode packages: %w", err)
	}

	return packages, nil
}
