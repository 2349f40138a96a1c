package repository

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileUpdate holds a partial profile update; nil fields keep the current
// value.
type ProfileUpdate struct {
	Name         *string
	Phone        *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	Bio          *string
	PortfolioURL *string
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error
	PromoteToProvider(ctx context.Context, id int64) error
	ProviderStats(ctx context.Context, providerID int64) (*domain.ProviderStats, error)
	SearchProviders(ctx context.Context) ([]domain.ProviderListing, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, name, email, COALESCE(phone, ''), role,
			COALESCE(address, ''), latitude, longitude, COALESCE(bio, ''),
			COALESCE(portfolio_url, ''), is_verified, COALESCE(profile_image, ''), created_at
		FROM users WHERE user_id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Address,
		&u.Latitude, &u.Longitude, &u.Bio, &u.PortfolioURL, &u.IsVerified,
		&u.ProfileImage, &u.CreatedAt); err != nil {
		return nil, mapError("user", "select", err)
	}
	return &u, nil
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET
			name = COALESCE($1, name),
			phone = COALESCE($2, phone),
			address = COALESCE($3, address),
			latitude = COALESCE($4, latitude),
			longitude = COALESCE($5, longitude),
			bio = COALESCE($6, bio),
			portfolio_url = COALESCE($7, portfolio_url)
		WHERE user_id = $8`,
		upd.Name, upd.Phone, upd.Address, upd.Latitude, upd.Longitude,
		upd.Bio, upd.PortfolioURL, id)
	if err != nil {
		return mapError("user", "update", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("user not found")
	}
	return nil
}

// PromoteToProvider is guarded on the current role: promotion is one-way and
// a repeat call changes nothing.
func (r *PGUserRepository) PromoteToProvider(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET role='provider' WHERE user_id=$1 AND role='customer'`, id)
	if err != nil {
		return mapError("user", "update", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflictf("user is not a customer")
	}
	return nil
}

func (r *PGUserRepository) ProviderStats(ctx context.Context, providerID int64) (*domain.ProviderStats, error) {
	var s domain.ProviderStats
	err := r.db.QueryRow(ctx, `SELECT
			(SELECT COUNT(*) FROM services WHERE provider_id=$1 AND is_active = TRUE),
			(SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE provider_id=$1),
			(SELECT COUNT(*) FROM reviews WHERE provider_id=$1),
			(SELECT COUNT(*) FROM bookings WHERE provider_id=$1 AND status='completed')`,
		providerID).
		Scan(&s.TotalServices, &s.AvgRating, &s.TotalReviews, &s.CompletedJobs)
	if err != nil {
		return nil, mapError("user", "select", err)
	}
	return &s, nil
}

// SearchProviders returns every provider with activity aggregates, verified
// and best-rated first. The set is unpaginated for the same reason as
// service search: proximity ranking needs all candidates.
func (r *PGUserRepository) SearchProviders(ctx context.Context) ([]domain.ProviderListing, error) {
	rows, err := r.db.Query(ctx, `SELECT u.user_id, u.name, u.email, COALESCE(u.phone, ''),
			COALESCE(u.address, ''), u.latitude, u.longitude, COALESCE(u.bio, ''),
			u.is_verified, COALESCE(u.profile_image, ''),
			COUNT(DISTINCT s.service_id), COUNT(DISTINCT b.booking_id),
			COALESCE(AVG(r.rating), 0), COUNT(DISTINCT r.review_id)
		FROM users u
		LEFT JOIN services s ON u.user_id = s.provider_id AND s.is_active = TRUE
		LEFT JOIN bookings b ON u.user_id = b.provider_id AND b.status = 'completed'
		LEFT JOIN reviews r ON u.user_id = r.provider_id
		WHERE u.role = 'provider'
		GROUP BY u.user_id
		ORDER BY u.is_verified DESC, COALESCE(AVG(r.rating), 0) DESC`)
	if err != nil {
		return nil, mapError("provider", "select", err)
	}
	defer rows.Close()

	var providers []domain.ProviderListing
	for rows.Next() {
		var p domain.ProviderListing
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address,
			&p.Latitude, &p.Longitude, &p.Bio, &p.IsVerified, &p.ProfileImage,
			&p.ServiceCount, &p.CompletedJobs, &p.AvgRating, &p.ReviewCount); err != nil {
			return nil, mapError("provider", "scan", err)
		}
		providers = append(providers, p)
	}
	return providers, mapError("provider", "select", rows.Err())
}

var _ UserRepository = (*PGUserRepository)(nil)
