package repository

import (
	"context"
	"strconv"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServiceUpdate holds a partial update; nil fields keep the current value.
type ServiceUpdate struct {
	CategoryID       *int64
	Title            *string
	Description      *string
	Price            *float64
	Location         *string
	Latitude         *float64
	Longitude        *float64
	ServiceType      *string
	DurationEstimate *string
	IsActive         *bool
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	GetListing(ctx context.Context, id int64) (*domain.ServiceListing, error)
	Search(ctx context.Context, filter domain.ServiceFilter) ([]domain.ServiceListing, error)
	ListByProvider(ctx context.Context, providerID int64) ([]domain.ServiceListing, error)
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, id int64, upd ServiceUpdate) error
	Deactivate(ctx context.Context, id int64) error
}

type PGServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) ServiceRepository {
	return &PGServiceRepository{db: db}
}

func (r *PGServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT service_id, provider_id, category_id, title, description,
			price, COALESCE(location, ''), latitude, longitude, service_type,
			COALESCE(duration_estimate, ''), is_active, created_at, updated_at
		FROM services WHERE service_id=$1`, id)
	var s domain.Service
	if err := row.Scan(&s.ID, &s.ProviderID, &s.CategoryID, &s.Title, &s.Description,
		&s.Price, &s.Location, &s.Latitude, &s.Longitude, &s.ServiceType,
		&s.DurationEstimate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapError("service", "select", err)
	}
	return &s, nil
}

const listingQuery = `SELECT s.service_id, s.provider_id, s.category_id, s.title, s.description,
		s.price, COALESCE(s.location, ''), s.latitude, s.longitude, s.service_type,
		COALESCE(s.duration_estimate, ''), s.is_active, s.created_at, s.updated_at,
		u.name, COALESCE(u.phone, ''), u.is_verified, c.name,
		COALESCE(AVG(r.rating), 0), COUNT(r.review_id)
	FROM services s
	JOIN users u ON s.provider_id = u.user_id
	JOIN categories c ON s.category_id = c.category_id
	LEFT JOIN reviews r ON s.service_id = r.service_id`

const listingGroupBy = ` GROUP BY s.service_id, u.user_id, c.category_id`

func (r *PGServiceRepository) GetListing(ctx context.Context, id int64) (*domain.ServiceListing, error) {
	row := r.db.QueryRow(ctx, listingQuery+` WHERE s.service_id=$1`+listingGroupBy, id)
	l, err := scanServiceListing(row)
	if err != nil {
		return nil, mapError("service", "select", err)
	}
	return l, nil
}

// Search returns the full filtered candidate set, unpaginated: proximity
// ranking happens in memory over all candidates, so the store must not
// truncate them.
func (r *PGServiceRepository) Search(ctx context.Context, filter domain.ServiceFilter) ([]domain.ServiceListing, error) {
	query := listingQuery + ` WHERE s.is_active = TRUE`
	args := []any{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += ` AND s.category_id = $` + strconv.Itoa(len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		query += ` AND s.price >= $` + strconv.Itoa(len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		query += ` AND s.price <= $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (s.title ILIKE $` + n + ` OR s.description ILIKE $` + n + `)`
	}
	query += listingGroupBy + ` ORDER BY s.created_at DESC`

	return r.queryListings(ctx, query, args...)
}

func (r *PGServiceRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.ServiceListing, error) {
	query := listingQuery + ` WHERE s.provider_id=$1 AND s.is_active = TRUE` +
		listingGroupBy + ` ORDER BY s.created_at DESC`
	return r.queryListings(ctx, query, providerID)
}

func (r *PGServiceRepository) queryListings(ctx context.Context, query string, args ...any) ([]domain.ServiceListing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("service", "select", err)
	}
	defer rows.Close()

	var listings []domain.ServiceListing
	for rows.Next() {
		l, err := scanServiceListing(rows)
		if err != nil {
			return nil, mapError("service", "scan", err)
		}
		listings = append(listings, *l)
	}
	return listings, mapError("service", "select", rows.Err())
}

func (r *PGServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	err := r.db.QueryRow(ctx, `INSERT INTO services
		(provider_id, category_id, title, description, price, location, latitude, longitude, service_type, duration_estimate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING service_id, is_active, created_at, updated_at`,
		service.ProviderID, service.CategoryID, service.Title, service.Description,
		service.Price, service.Location, service.Latitude, service.Longitude,
		service.ServiceType, service.DurationEstimate).
		Scan(&service.ID, &service.IsActive, &service.CreatedAt, &service.UpdatedAt)
	return mapError("service", "insert", err)
}

func (r *PGServiceRepository) Update(ctx context.Context, id int64, upd ServiceUpdate) error {
	cmd, err := r.db.Exec(ctx, `UPDATE services SET
			category_id = COALESCE($1, category_id),
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			location = COALESCE($5, location),
			latitude = COALESCE($6, latitude),
			longitude = COALESCE($7, longitude),
			service_type = COALESCE($8, service_type),
			duration_estimate = COALESCE($9, duration_estimate),
			is_active = COALESCE($10, is_active),
			updated_at = now()
		WHERE service_id = $11`,
		upd.CategoryID, upd.Title, upd.Description, upd.Price, upd.Location,
		upd.Latitude, upd.Longitude, upd.ServiceType, upd.DurationEstimate,
		upd.IsActive, id)
	if err != nil {
		return mapError("service", "update", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("service not found")
	}
	return nil
}

// Deactivate retires a listing instead of removing the row: bookings and
// reviews keep their foreign keys, and the listing simply stops matching
// active-only reads.
func (r *PGServiceRepository) Deactivate(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE services SET is_active=FALSE, updated_at=NOW()
		WHERE service_id=$1 AND is_active=TRUE`, id)
	if err != nil {
		return mapError("service", "deactivate", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("service not found")
	}
	return nil
}

func scanServiceListing(row rowScanner) (*domain.ServiceListing, error) {
	var l domain.ServiceListing
	err := row.Scan(&l.ID, &l.ProviderID, &l.CategoryID, &l.Title, &l.Description,
		&l.Price, &l.Location, &l.Latitude, &l.Longitude, &l.ServiceType,
		&l.DurationEstimate, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		&l.ProviderName, &l.ProviderPhone, &l.ProviderVerified, &l.CategoryName,
		&l.AvgRating, &l.ReviewCount)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

var _ ServiceRepository = (*PGServiceRepository)(nil)
