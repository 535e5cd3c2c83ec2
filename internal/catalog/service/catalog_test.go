package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "salonbook/internal/catalog/errors"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
)

const (
	serviceID = "665f1f77bcf86cd799439001"
	packageID = "665f1f77bcf86cd799439002"
)

type mockCatalogRepo struct {
	findServiceFn  func(ctx context.Context, id string) (*model.Service, error)
	findPackageFn  func(ctx context.Context, id string) (*model.Package, error)
	findServicesFn func(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	findPackagesFn func(ctx context.Context, activeOnly bool) ([]*model.Package, error)
}

func (m *mockCatalogRepo) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findServiceFn != nil {
		return m.findServiceFn(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalogRepo) FindPackageByID(ctx context.Context, id string) (*model.Package, error) {
	if m.findPackageFn != nil {
		return m.findPackageFn(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockCatalogRepo) FindServices(ctx context.Context, activeOnly bool) ([]*model.Service, error) {
	if m.findServicesFn != nil {
		return m.findServicesFn(ctx, activeOnly)
	}
	return nil, nil
}

func (m *mockCatalogRepo) FindPackages(ctx context.Context, activeOnly bool) ([]*model.Package, error) {
	if m.findPackagesFn != nil {
		return m.findPackagesFn(ctx, activeOnly)
	}
	return nil, nil
}

func activeService() *model.Service {
	return &model.Service{
		ID:       serviceID,
		Name:     "Haircut",
		Category: "Hair",
		Duration: 30,
		Pricing: []model.PriceOption{
			{Label: "Standard", Amount: 1500},
			{Label: "Senior Stylist", Amount: 2500},
		},
		Active: true,
	}
}

func TestResolveService(t *testing.T) {
	repo := &mockCatalogRepo{
		findServiceFn: func(context.Context, string) (*model.Service, error) {
			return activeService(), nil
		},
	}
	svc := NewCatalogService(repo)

	resolved, err := svc.ResolveService(context.Background(), serviceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.Kind != model.SubjectService || resolved.RefID != serviceID {
		t.Errorf("unexpected subject: %+v", resolved)
	}
	if resolved.DisplayName != "Haircut" || resolved.Duration != 30 {
		t.Errorf("snapshot fields wrong: %+v", resolved)
	}
	// The headline price is the first pricing entry, not the cheapest.
	if resolved.Price != 1500 {
		t.Errorf("expected headline price 1500, got %v", resolved.Price)
	}
}

func TestResolveServiceInactive(t *testing.T) {
	repo := &mockCatalogRepo{
		findServiceFn: func(context.Context, string) (*model.Service, error) {
			svc := activeService()
			svc.Active = false
			return svc, nil
		},
	}
	svc := NewCatalogService(repo)

	_, err := svc.ResolveService(context.Background(), serviceID)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("inactive service should not resolve, got %v", err)
	}
}

func TestResolveServiceNotFound(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{})

	_, err := svc.ResolveService(context.Background(), serviceID)
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveServiceInvalidID(t *testing.T) {
	repo := &mockCatalogRepo{
		findServiceFn: func(context.Context, string) (*model.Service, error) {
			return nil, catalogerrors.ErrInvalidID
		},
	}
	svc := NewCatalogService(repo)

	_, err := svc.ResolveService(context.Background(), "garbage")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestResolvePackage(t *testing.T) {
	repo := &mockCatalogRepo{
		findPackageFn: func(context.Context, string) (*model.Package, error) {
			return &model.Package{
				ID:            packageID,
				Name:          "Bridal Package",
				TotalDuration: 180,
				Price:         25000,
				Active:        true,
			}, nil
		},
	}
	svc := NewCatalogService(repo)

	resolved, err := svc.ResolvePackage(context.Background(), packageID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Kind != model.SubjectPackage || resolved.Duration != 180 || resolved.Price != 25000 {
		t.Errorf("unexpected resolution: %+v", resolved)
	}
}

func TestListServicesActiveOnly(t *testing.T) {
	var gotActiveOnly bool
	repo := &mockCatalogRepo{
		findServicesFn: func(_ context.Context, activeOnly bool) ([]*model.Service, error) {
			gotActiveOnly = activeOnly
			return []*model.Service{activeService()}, nil
		},
	}
	svc := NewCatalogService(repo)

	services, err := svc.ListServices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 1 {
		t.Errorf("expected one service, got %d", len(services))
	}
	if !gotActiveOnly {
		t.Error("public listing should request active services only")
	}
}

func TestResolveServiceStorageFailures(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"deadline exceeded", context.DeadlineExceeded, apperrors.CodeTimeout},
		{"client disconnected", mongo.ErrClientDisconnected, apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCatalogRepo{
				findServiceFn: func(context.Context, string) (*model.Service, error) {
					return nil, tt.repoErr
				},
			}
			svc := NewCatalogService(repo)

			_, err := svc.ResolveService(context.Background(), serviceID)
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}
