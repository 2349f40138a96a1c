package repository

import (
	"context"
	"time"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusUpdate is a guarded status change: the UPDATE only applies while the
// booking is still in FromStatus, so two concurrent transitions cannot both
// win.
type StatusUpdate struct {
	BookingID        int64
	FromStatus       domain.BookingStatus
	ToStatus         domain.BookingStatus
	ProviderResponse *string
	CompletedAt      *time.Time
	PaymentStatus    *domain.PaymentStatus
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, upd StatusUpdate) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `booking_id, service_id, customer_id, provider_id, scheduled_date,
	total_price, customer_notes, COALESCE(provider_response, ''), status, payment_status,
	completed_at, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings
		(service_id, customer_id, provider_id, scheduled_date, total_price, customer_notes, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING booking_id, created_at, updated_at`,
		booking.ServiceID, booking.CustomerID, booking.ProviderID, booking.ScheduledDate,
		booking.TotalPrice, booking.CustomerNotes, booking.Status, booking.PaymentStatus).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	return mapError("booking", "insert", err)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, mapError("booking", "select", err)
	}
	return b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET
			status = $1,
			provider_response = COALESCE($2, provider_response),
			completed_at = COALESCE($3, completed_at),
			payment_status = COALESCE($4, payment_status),
			updated_at = now()
		WHERE booking_id = $5 AND status = $6
		RETURNING `+bookingColumns,
		upd.ToStatus, upd.ProviderResponse, upd.CompletedAt, upd.PaymentStatus,
		upd.BookingID, upd.FromStatus)
	b, err := scanBooking(row)
	if err != nil {
		mapped := mapError("booking", "update", err)
		// No row matched: the booking left FromStatus under our feet.
		if domain.IsKind(mapped, domain.KindNotFound) {
			return nil, domain.Conflictf("booking status changed concurrently")
		}
		return nil, mapped
	}
	return b, nil
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	return r.list(ctx, `customer_id`, customerID)
}

func (r *PGBookingRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	return r.list(ctx, `provider_id`, providerID)
}

func (r *PGBookingRepository) list(ctx context.Context, column string, id int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE `+column+`=$1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, mapError("booking", "select", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError("booking", "scan", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, mapError("booking", "select", rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.ServiceID, &b.CustomerID, &b.ProviderID, &b.ScheduledDate,
		&b.TotalPrice, &b.CustomerNotes, &b.ProviderResponse, &b.Status, &b.PaymentStatus,
		&b.CompletedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
