package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvekslers/servimarket/api"
	"github.com/dvekslers/servimarket/config"
	"github.com/dvekslers/servimarket/internal/bootstrap"
	"github.com/dvekslers/servimarket/internal/cache"
	"github.com/dvekslers/servimarket/internal/kafka"
	"github.com/dvekslers/servimarket/internal/logger"
	"github.com/dvekslers/servimarket/internal/repository"
	"github.com/dvekslers/servimarket/internal/service/booking"
	"github.com/dvekslers/servimarket/internal/service/catalog"
	"github.com/dvekslers/servimarket/internal/service/discovery"
	"github.com/dvekslers/servimarket/internal/service/notification"
	"github.com/dvekslers/servimarket/internal/service/review"
	"github.com/dvekslers/servimarket/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Discovery.ListingsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	notifier := notification.NewNotifier(notificationRepo, producer, cfg.Kafka.NotificationsTopic, zlog)

	bookingSvc := booking.NewBookingService(bookingRepo, serviceRepo, notifier, producer, cfg.Kafka.BookingEventsTopic, zlog)
	reviewSvc := review.NewReviewService(reviewRepo, bookingRepo, notifier, zlog)
	discoverySvc := discovery.NewDiscoveryService(serviceRepo, userRepo, reviewRepo, redisCache, cfg.Discovery.DefaultLimit, zlog)
	catalogSvc := catalog.NewCatalogService(serviceRepo, categoryRepo, redisCache, zlog)
	userSvc := users.NewUserService(userRepo)

	handlers := bootstrap.Handlers{
		Bookings:   api.NewBookingHandler(bookingSvc),
		Reviews:    api.NewReviewHandler(reviewSvc),
		Services:   api.NewServiceHandler(discoverySvc, catalogSvc),
		Users:      api.NewUserHandler(userSvc, discoverySvc),
		Categories: api.NewCategoryHandler(catalogSvc),
	}

	if err := bootstrap.Run(ctx, cfg, zlog, handlers); err != nil {
		zlog.Fatal("server error: " + err.Error())
	}
}
