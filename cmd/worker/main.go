package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvekslers/servimarket/config"
	"github.com/dvekslers/servimarket/internal/email"
	"github.com/dvekslers/servimarket/internal/kafka"
	"github.com/dvekslers/servimarket/internal/logger"
	"github.com/dvekslers/servimarket/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// The worker drains the notifications topic and delivers each event by
// email. Events it cannot address are logged and skipped so the consumer
// group keeps moving.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Production)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres: " + err.Error())
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	sender := email.NewSender()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog)
	defer consumer.Close()

	zlog.Info("notification worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic))

	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.NotificationEvent) error {
		recipient, err := userRepo.GetByID(ctx, event.UserID)
		if err != nil {
			zlog.Warn("resolve notification recipient",
				zap.Int64("user_id", event.UserID), zap.Error(err))
			return nil
		}

		if err := sender.Send(ctx, recipient.Email, event.Title, event.Message); err != nil {
			zlog.Warn("send notification email",
				zap.Int64("user_id", event.UserID), zap.Error(err))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		zlog.Fatal("consumer stopped: " + err.Error())
	}
}
