package catalog

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/repository"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	CreateService(ctx context.Context, actor domain.Actor, input CreateServiceInput) (*domain.Service, error)
	UpdateService(ctx context.Context, actor domain.Actor, serviceID int64, upd repository.ServiceUpdate) error
	DeleteService(ctx context.Context, actor domain.Actor, serviceID int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
}

// Invalidator drops the cached discovery candidate set after a catalog
// write; a stale read is tolerable, a failed write here is not fatal.
type Invalidator interface {
	InvalidateServiceListings(ctx context.Context) error
}

type CatalogService struct {
	services    repository.ServiceRepository
	categories  repository.CategoryRepository
	invalidator Invalidator
	log         *zap.Logger
}

type CreateServiceInput struct {
	CategoryID       int64    `json:"category_id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ServiceType      string   `json:"service_type"`
	DurationEstimate string   `json:"duration_estimate"`
}

func NewCatalogService(
	services repository.ServiceRepository,
	categories repository.CategoryRepository,
	invalidator Invalidator,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{
		services:    services,
		categories:  categories,
		invalidator: invalidator,
		log:         log,
	}
}

func (s *CatalogService) CreateService(ctx context.Context, actor domain.Actor, input CreateServiceInput) (*domain.Service, error) {
	if actor.Role != domain.RoleProvider {
		return nil, domain.Forbiddenf("only providers can create services")
	}
	if input.CategoryID <= 0 || input.Title == "" || input.Description == "" || input.Price <= 0 {
		return nil, domain.Validationf("please provide category, title, description, and price")
	}

	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = "fixed"
	}
	service := &domain.Service{
		ProviderID:       actor.UserID,
		CategoryID:       input.CategoryID,
		Title:            input.Title,
		Description:      input.Description,
		Price:            input.Price,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		ServiceType:      serviceType,
		DurationEstimate: input.DurationEstimate,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return service, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, actor domain.Actor, serviceID int64, upd repository.ServiceUpdate) error {
	if err := s.authorizeOwner(ctx, actor, serviceID); err != nil {
		return err
	}
	if err := s.services.Update(ctx, serviceID, upd); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) DeleteService(ctx context.Context, actor domain.Actor, serviceID int64) error {
	if err := s.authorizeOwner(ctx, actor, serviceID); err != nil {
		return err
	}
	if err := s.services.Deactivate(ctx, serviceID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) authorizeOwner(ctx context.Context, actor domain.Actor, serviceID int64) error {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if service.ProviderID != actor.UserID {
		return domain.Forbiddenf("not authorized to modify this service")
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateServiceListings(ctx); err != nil {
		s.log.Warn("service listings cache invalidation failed", zap.Error(err))
	}
}

var _ CatalogUseCase = (*CatalogService)(nil)
