package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	ginrouter "crf-service/internal/adapter/gin/router"
	"crf-service/internal/adapter/grpc/health"
	"crf-service/internal/config"
	"crf-service/pkg/ratelimit"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
	// GRPC and Health are nil when GRPC_HEALTH_PORT is unset.
	GRPC   *grpc.Server
	Health *health.Reporter
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	handlers ginrouter.Handlers,
	limiter *ratelimit.Limiter,
	healthCheck func(ctx context.Context) error,
) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP: SetupGinServer(
			handlers,
			limiter,
			cfg.CORS.AllowOrigins,
			healthCheck,
			cfg.App.HTTPAddress(),
			l,
		),
	}

	if cfg.App.GRPCHealthAddress() != "" {
		s.GRPC, s.Health = SetupGRPC(healthCheck, limiter, cfg.Logger.ServiceName, l)
	}

	return s
}

// Start listens on the configured addresses and serves until ctx is done or
// a server fails.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.HTTP.Addr, err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		addr := s.Config.App.GRPCHealthAddress()
		grpcLis, err = lc.Listen(ctx, "tcp", addr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the servers on already opened listeners until ctx is done or
// one of them fails, then shuts them down. grpcLis is ignored when the gRPC
// server is disabled.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.App.ShutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", httpLis.Addr().String()))
		if err := s.HTTP.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil && grpcLis != nil {
		g.Go(func() error {
			s.Health.Run(ctx)
			return nil
		})
		g.Go(func() error {
			s.Logger.Info("gRPC health server running", zap.String("address", grpcLis.Addr().String()))
			if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Shutdown drains the HTTP server and stops the gRPC server, forcing the
// latter once ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down servers")

	var errs []error
	if err := s.HTTP.Shutdown(ctx); err != nil {
		s.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if s.GRPC != nil {
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.Logger.Warn("gRPC graceful stop timed out, forcing")
			s.GRPC.Stop()
		}
	}

	return errors.Join(errs...)
}
