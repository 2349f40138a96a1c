package notification

import (
	"context"
	"strconv"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/kafka"
	"github.com/dvekslers/servimarket/internal/repository"
	"go.uber.org/zap"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Notifier persists notification rows and enqueues them for out-of-band
// delivery. Callers treat the whole thing as best-effort: a failed Notify
// must never roll back the state change that triggered it.
type Notifier struct {
	notifications repository.NotificationRepository
	producer      Producer
	topic         string
	log           *zap.Logger
}

func NewNotifier(notifications repository.NotificationRepository, producer Producer, topic string, log *zap.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		producer:      producer,
		topic:         topic,
		log:           log,
	}
}

func (n *Notifier) Notify(ctx context.Context, notif *domain.Notification) error {
	if err := n.notifications.Create(ctx, notif); err != nil {
		return err
	}

	if n.producer == nil || n.topic == "" {
		return nil
	}
	event := kafka.NotificationEvent{
		UserID:    notif.UserID,
		Type:      notif.Type,
		Title:     notif.Title,
		Message:   notif.Message,
		RelatedID: notif.RelatedID,
	}
	if err := n.producer.Publish(ctx, n.topic, strconv.FormatInt(notif.UserID, 10), event); err != nil {
		// The row is already stored; delivery can lag.
		n.log.Warn("publish notification event failed",
			zap.Int64("user_id", notif.UserID), zap.String("type", notif.Type), zap.Error(err))
	}
	return nil
}
