package app

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"crf-service/cmd/api/di"
	"crf-service/cmd/api/server"
	"crf-service/internal/config"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_OUTPUT_PATH", "stderr")

	_, err := New(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is not set")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.HTTPHost = "127.0.0.1"
	cfg.App.HTTPPort = "0"
	cfg.App.ShutdownTimeoutSeconds = 2
	cfg.CORS.AllowOrigins = []string{"*"}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	container := di.Build(cfg, log, db, nil)
	a := &App{
		Config:    cfg,
		Logger:    log,
		Server:    server.New(cfg, log, container.Handlers, container.Limiter, container.HealthCheck),
		Container: container,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "database should be closed after shutdown")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, ".", getConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/crf")
	assert.Equal(t, "/etc/crf", getConfigPath())
}
