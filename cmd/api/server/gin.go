package server

import (
	"context"
	"net/http"
	"time"

	ginrouter "crf-service/internal/adapter/gin/router"
	"crf-service/pkg/ratelimit"

	"go.uber.org/zap"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handlers ginrouter.Handlers,
	limiter *ratelimit.Limiter,
	allowOrigins []string,
	healthCheck func(ctx context.Context) error,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handlers, ginrouter.Options{
		Limiter:      limiter,
		AllowOrigins: allowOrigins,
		HealthCheck:  healthCheck,
	}, l)

	l.Info("Gin REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
