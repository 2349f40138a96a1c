package repository

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	err := r.db.QueryRow(ctx, `INSERT INTO notifications (user_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING notification_id, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.RelatedID).
		Scan(&n.ID, &n.CreatedAt)
	return mapError("notification", "insert", err)
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
