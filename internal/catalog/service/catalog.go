package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "salonbook/internal/catalog/errors"
	"salonbook/internal/catalog/repository"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

type CatalogService interface {
	ResolveService(ctx context.Context, id string) (*model.ResolvedSubject, error)
	ResolvePackage(ctx context.Context, id string) (*model.ResolvedSubject, error)
	ListServices(ctx context.Context) ([]*model.Service, error)
	ListPackages(ctx context.Context) ([]*model.Package, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

// ResolveService turns a service id into the subject snapshot a booking
// carries. Inactive services are not bookable even though they remain
// readable for historical appointments.
func (s *catalogService) ResolveService(ctx context.Context, id string) (*model.ResolvedSubject, error) {
	svc, err := s.repo.FindServiceByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "service", id)
	}
	if !svc.Active {
		return nil, apperrors.InvalidInput("service is no longer offered")
	}

	return &model.ResolvedSubject{
		Kind:        model.SubjectService,
		RefID:       svc.ID,
		DisplayName: svc.Name,
		Duration:    svc.Duration,
		Price:       svc.HeadlinePrice(),
	}, nil
}

func (s *catalogService) ResolvePackage(ctx context.Context, id string) (*model.ResolvedSubject, error) {
	pkg, err := s.repo.FindPackageByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "package", id)
	}
	if !pkg.Active {
		return nil, apperrors.InvalidInput("package is no longer offered")
	}

	return &model.ResolvedSubject{
		Kind:        model.SubjectPackage,
		RefID:       pkg.ID,
		DisplayName: pkg.Name,
		Duration:    pkg.TotalDuration,
		Price:       pkg.Price,
	}, nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.FindServices(ctx, true)
	if err != nil {
		return nil, apperrors.Internal("failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) ListPackages(ctx context.Context) ([]*model.Package, error) {
	packages, err := s.repo.FindPackages(ctx, true)
	if err != nil {
		return nil, apperrors.Internal("failed to list packages", err)
	}
	return packages, nil
}

func (s *catalogService) mapRepoError(err error, resource, id string) error {
	switch {
	case errors.Is(err, catalogerrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, catalogerrors.ErrInvalidID):
		return apperrors.InvalidInput(resource + " id is not a valid object id")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(resource + " lookup timed out")
	case errors.Is(err, mongo.ErrClientDisconnected):
		return apperrors.Unavailable("catalog storage")
	default:
		return apperrors.Internal("catalog lookup failed", err)
	}
}
