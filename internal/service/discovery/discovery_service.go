package discovery

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/geo"
	"github.com/dvekslers/servimarket/internal/repository"
	"go.uber.org/zap"
)

type DiscoveryUseCase interface {
	SearchServices(ctx context.Context, input SearchServicesInput) (*ServicePage, error)
	SearchProviders(ctx context.Context, input SearchProvidersInput) (*ProviderPage, error)
	GetService(ctx context.Context, id int64) (*ServiceDetail, error)
	ListProviderServices(ctx context.Context, providerID int64) ([]domain.ServiceListing, error)
}

type Cache interface {
	GetServiceListings(ctx context.Context) ([]domain.ServiceListing, error)
	SetServiceListings(ctx context.Context, listings []domain.ServiceListing) error
}

type DiscoveryService struct {
	services     repository.ServiceRepository
	users        repository.UserRepository
	reviews      repository.ReviewRepository
	cache        Cache
	defaultLimit int
	log          *zap.Logger
}

type SearchServicesInput struct {
	Filter domain.ServiceFilter
	Origin *geo.Point
	Limit  int
	Offset int
}

type SearchProvidersInput struct {
	Origin *geo.Point
	Limit  int
	Offset int
}

// ServicePage is one slice of the ranked result set. Total and HasMore
// describe the full filtered set, not the page.
type ServicePage struct {
	Items   []domain.ServiceListing
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

type ProviderPage struct {
	Items   []domain.ProviderListing
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

type ServiceDetail struct {
	domain.ServiceListing
	RecentReviews []domain.ReviewEntry
}

func NewDiscoveryService(
	services repository.ServiceRepository,
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	cache Cache,
	defaultLimit int,
	log *zap.Logger,
) *DiscoveryService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &DiscoveryService{
		services:     services,
		users:        users,
		reviews:      reviews,
		cache:        cache,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// SearchServices filters at the store, ranks the full filtered set by
// proximity when an origin is given, and paginates last. The order is a
// contract: reversing it changes results.
func (s *DiscoveryService) SearchServices(ctx context.Context, input SearchServicesInput) (*ServicePage, error) {
	listings, err := s.loadServiceListings(ctx, input.Filter)
	if err != nil {
		return nil, err
	}

	if input.Origin != nil {
		listings = rankServices(*input.Origin, listings)
	}

	limit, offset := s.page(input.Limit, input.Offset)
	total := len(listings)
	items := paginateServices(listings, limit, offset)

	return &ServicePage{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

func (s *DiscoveryService) SearchProviders(ctx context.Context, input SearchProvidersInput) (*ProviderPage, error) {
	providers, err := s.users.SearchProviders(ctx)
	if err != nil {
		return nil, err
	}

	if input.Origin != nil {
		providers = rankProviders(*input.Origin, providers)
	}

	limit, offset := s.page(input.Limit, input.Offset)
	total := len(providers)
	items := paginateProviders(providers, limit, offset)

	return &ProviderPage{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

func (s *DiscoveryService) GetService(ctx context.Context, id int64) (*ServiceDetail, error) {
	listing, err := s.services.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.reviews.ListByService(ctx, id, 5, 0)
	if err != nil {
		return nil, err
	}
	return &ServiceDetail{ServiceListing: *listing, RecentReviews: recent}, nil
}

func (s *DiscoveryService) ListProviderServices(ctx context.Context, providerID int64) ([]domain.ServiceListing, error) {
	return s.services.ListByProvider(ctx, providerID)
}

// loadServiceListings serves the unfiltered candidate set from cache when it
// can; filtered searches always hit the store.
func (s *DiscoveryService) loadServiceListings(ctx context.Context, filter domain.ServiceFilter) ([]domain.ServiceListing, error) {
	if s.cache == nil || !filter.IsZero() {
		return s.services.Search(ctx, filter)
	}

	cached, err := s.cache.GetServiceListings(ctx)
	if err != nil {
		s.log.Warn("service listings cache read failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	listings, err := s.services.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetServiceListings(ctx, listings); err != nil {
		s.log.Warn("service listings cache write failed", zap.Error(err))
	}
	return listings, nil
}

func rankServices(origin geo.Point, listings []domain.ServiceListing) []domain.ServiceListing {
	coords := make([]*geo.Point, len(listings))
	for i, l := range listings {
		if l.Latitude != nil && l.Longitude != nil {
			coords[i] = &geo.Point{Lat: *l.Latitude, Lon: *l.Longitude}
		}
	}
	ranked := geo.RankByProximity(origin, coords)

	ordered := make([]domain.ServiceListing, len(ranked))
	for i, r := range ranked {
		ordered[i] = listings[r.Index]
		ordered[i].DistanceKm = r.Distance
	}
	return ordered
}

func rankProviders(origin geo.Point, providers []domain.ProviderListing) []domain.ProviderListing {
	coords := make([]*geo.Point, len(providers))
	for i, p := range providers {
		if p.Latitude != nil && p.Longitude != nil {
			coords[i] = &geo.Point{Lat: *p.Latitude, Lon: *p.Longitude}
		}
	}
	ranked := geo.RankByProximity(origin, coords)

	ordered := make([]domain.ProviderListing, len(ranked))
	for i, r := range ranked {
		ordered[i] = providers[r.Index]
		ordered[i].DistanceKm = r.Distance
	}
	return ordered
}

func paginateServices(listings []domain.ServiceListing, limit, offset int) []domain.ServiceListing {
	if offset >= len(listings) {
		return nil
	}
	end := offset + limit
	if end > len(listings) {
		end = len(listings)
	}
	return listings[offset:end]
}

func paginateProviders(providers []domain.ProviderListing, limit, offset int) []domain.ProviderListing {
	if offset >= len(providers) {
		return nil
	}
	end := offset + limit
	if end > len(providers) {
		end = len(providers)
	}
	return providers[offset:end]
}

func (s *DiscoveryService) page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ DiscoveryUseCase = (*DiscoveryService)(nil)
