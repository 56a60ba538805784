package di

import (
	"context"
	"fmt"
	"time"

	"crf-service/cmd/api/infrastructure"
	"crf-service/internal/adapter/cache"
	"crf-service/internal/adapter/db/mysql"
	ginhandler "crf-service/internal/adapter/gin/handler"
	ginrouter "crf-service/internal/adapter/gin/router"
	"crf-service/internal/adapter/repository/cached"
	"crf-service/internal/config"
	"crf-service/internal/usecase/admin"
	"crf-service/internal/usecase/patient"
	"crf-service/internal/usecase/study"
	"crf-service/internal/usecase/user"
	"crf-service/pkg/ratelimit"
	redisclient "crf-service/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Limiter     *ratelimit.Limiter
	Handlers    ginrouter.Handlers
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return Build(cfg, l, db, rdb), nil
}

// Build wires repositories, caches, usecases and handlers on top of already
// opened connections. rdb may be nil.
func Build(cfg *config.Config, l *zap.Logger, db *gorm.DB, rdb *redisclient.Client) *Container {
	ttl := time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second

	// Interfaces stay nil when Redis is off; a typed nil pointer would not.
	var (
		raw            *goredis.Client
		userCache      cache.UserCache
		structureCache cache.StructureCache
	)
	if rdb != nil {
		raw = rdb.Client
		userCache = cache.NewRedisUserCache(raw, ttl, l)
		structureCache = cache.NewRedisStructureCache(raw, ttl, l)
	}

	userRepo := cached.NewCachedUserRepository(mysql.NewUserRepo(db, l), userCache, l)

	adminUC := admin.New(mysql.NewStatsRepo(db, l), l)
	patientUC := patient.New(mysql.NewPatientRepo(db, l), l)
	studyUC := study.New(mysql.NewStudyRepo(db, l), structureCache, l)
	userUC := user.New(userRepo, l)

	limiter := ratelimit.New(raw, ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	})

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Limiter:     limiter,
		Handlers: ginrouter.Handlers{
			Admin:   ginhandler.NewAdminHandler(adminUC, l),
			Patient: ginhandler.NewPatientHandler(patientUC, l),
			Study:   ginhandler.NewStudyHandler(studyUC, l),
			User:    ginhandler.NewUserHandler(userUC, l),
		},
	}
}

// HealthCheck pings the database.
func (c *Container) HealthCheck(ctx context.Context) error {
	return infrastructure.PingDatabase(c.DB)(ctx)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
