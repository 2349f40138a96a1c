package repository

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	ListByService(ctx context.Context, serviceID int64, limit, offset int) ([]domain.ReviewEntry, error)
	ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.ReviewEntry, error)
	StatsByService(ctx context.Context, serviceID int64) (*domain.ReviewStats, error)
	StatsByProvider(ctx context.Context, providerID int64) (*domain.ReviewStats, error)
	SetProviderResponse(ctx context.Context, id int64, response string) error
	Delete(ctx context.Context, id int64) error
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

// Create relies on the UNIQUE constraint on reviews.booking_id: even when
// two writers pass the application pre-check at once, only one insert can
// succeed and the loser gets a Conflict.
func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reviews
		(booking_id, service_id, customer_id, provider_id, rating, comment,
		 communication_rating, quality_rating, timeliness_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING review_id, created_at`,
		review.BookingID, review.ServiceID, review.CustomerID, review.ProviderID,
		review.Rating, review.Comment, review.CommunicationRating,
		review.QualityRating, review.TimelinessRating).
		Scan(&review.ID, &review.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Conflictf("review already exists for this booking")
	}
	return mapError("review", "insert", err)
}

func (r *PGReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	row := r.db.QueryRow(ctx, `SELECT review_id, booking_id, service_id, customer_id, provider_id,
			rating, COALESCE(comment, ''), communication_rating, quality_rating,
			timeliness_rating, COALESCE(provider_response, ''), created_at
		FROM reviews WHERE review_id=$1`, id)
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.BookingID, &rv.ServiceID, &rv.CustomerID, &rv.ProviderID,
		&rv.Rating, &rv.Comment, &rv.CommunicationRating, &rv.QualityRating,
		&rv.TimelinessRating, &rv.ProviderResponse, &rv.CreatedAt); err != nil {
		return nil, mapError("review", "select", err)
	}
	return &rv, nil
}

func (r *PGReviewRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE booking_id=$1)`, bookingID).
		Scan(&exists)
	if err != nil {
		return false, mapError("review", "select", err)
	}
	return exists, nil
}

func (r *PGReviewRepository) ListByService(ctx context.Context, serviceID int64, limit, offset int) ([]domain.ReviewEntry, error) {
	return r.listEntries(ctx, `r.service_id`, serviceID, limit, offset)
}

func (r *PGReviewRepository) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.ReviewEntry, error) {
	return r.listEntries(ctx, `r.provider_id`, providerID, limit, offset)
}

func (r *PGReviewRepository) listEntries(ctx context.Context, column string, id int64, limit, offset int) ([]domain.ReviewEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT r.review_id, r.booking_id, r.service_id, r.customer_id,
			r.provider_id, r.rating, COALESCE(r.comment, ''), r.communication_rating,
			r.quality_rating, r.timeliness_rating, COALESCE(r.provider_response, ''),
			r.created_at, u.name, COALESCE(u.profile_image, ''), s.title
		FROM reviews r
		JOIN users u ON r.customer_id = u.user_id
		JOIN services s ON r.service_id = s.service_id
		WHERE `+column+`=$1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, mapError("review", "select", err)
	}
	defer rows.Close()

	var entries []domain.ReviewEntry
	for rows.Next() {
		var e domain.ReviewEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ServiceID, &e.CustomerID, &e.ProviderID,
			&e.Rating, &e.Comment, &e.CommunicationRating, &e.QualityRating,
			&e.TimelinessRating, &e.ProviderResponse, &e.CreatedAt,
			&e.CustomerName, &e.CustomerImage, &e.ServiceTitle); err != nil {
			return nil, mapError("review", "scan", err)
		}
		entries = append(entries, e)
	}
	return entries, mapError("review", "select", rows.Err())
}

func (r *PGReviewRepository) StatsByService(ctx context.Context, serviceID int64) (*domain.ReviewStats, error) {
	return r.stats(ctx, `service_id`, serviceID)
}

func (r *PGReviewRepository) StatsByProvider(ctx context.Context, providerID int64) (*domain.ReviewStats, error) {
	return r.stats(ctx, `provider_id`, providerID)
}

func (r *PGReviewRepository) stats(ctx context.Context, column string, id int64) (*domain.ReviewStats, error) {
	var s domain.ReviewStats
	err := r.db.QueryRow(ctx, `SELECT COUNT(*),
			COALESCE(AVG(rating), 0),
			COALESCE(AVG(communication_rating), 0),
			COALESCE(AVG(quality_rating), 0),
			COALESCE(AVG(timeliness_rating), 0)
		FROM reviews WHERE `+column+`=$1`, id).
		Scan(&s.Total, &s.Averages.Rating, &s.Averages.Communication,
			&s.Averages.Quality, &s.Averages.Timeliness)
	if err != nil {
		return nil, mapError("review", "select", err)
	}
	return &s, nil
}

// SetProviderResponse overwrites the response unconditionally, so repeated
// calls are idempotent.
func (r *PGReviewRepository) SetProviderResponse(ctx context.Context, id int64, response string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reviews SET provider_response=$1 WHERE review_id=$2`, response, id)
	if err != nil {
		return mapError("review", "update", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("review not found")
	}
	return nil
}

func (r *PGReviewRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE review_id=$1`, id)
	if err != nil {
		return mapError("review", "delete", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("review not found")
	}
	return nil
}

var _ ReviewRepository = (*PGReviewRepository)(nil)
