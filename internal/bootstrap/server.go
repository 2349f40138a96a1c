package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dvekslers/servimarket/api"
	"github.com/dvekslers/servimarket/config"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Handlers groups the route handlers mounted under /api/v1.
type Handlers struct {
	Bookings   *api.BookingHandler
	Reviews    *api.ReviewHandler
	Services   *api.ServiceHandler
	Users      *api.UserHandler
	Categories *api.CategoryHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, h Handlers) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, log, h),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(log))

	auth := api.AuthRequired(cfg.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	h.Services.Register(v1.Group("/services"), auth)
	h.Bookings.Register(v1.Group("/bookings"), auth)
	h.Reviews.Register(v1.Group("/reviews"), auth)
	h.Users.Register(v1.Group("/users"), auth)
	h.Categories.Register(v1.Group("/categories"))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
