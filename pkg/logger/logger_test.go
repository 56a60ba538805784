package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("nonsense"))
}

func TestNewWithConfig(t *testing.T) {
	l, err := NewWithConfig(Config{
		Level:       "debug",
		Format:      "json",
		OutputPath:  "stderr",
		ServiceName: "crf-service",
		Environment: "test",
	})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestWithContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-123")
	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	t.Run("generates id", func(t *testing.T) {
		var got string
		_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			got = GetRequestID(ctx)
			return nil, nil
		})
		require.NoError(t, err)
		assert.Len(t, got, 36)
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))
		var got string
		_, err := interceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
			got = GetRequestID(ctx)
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), 0.1, "warn")
	ctx := context.Background()

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn level")

	gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT SLEEP(1)", 1 }, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm slow query", logs.All()[0].Message)

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, gorm.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len(), "record not found is not an error")

	gl.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, errors.New("boom"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gorm query error", logs.All()[1].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), 0.2, "info")

	sql, params := gl.ParamsFilter(context.Background(), "UPDATE `crf_v1_vs` SET `weight`=? WHERE patient_id = ?", "72", "p-1")
	assert.Equal(t, []interface{}{"72", "p-1"}, params)
	assert.Contains(t, sql, "`weight`=?")

	gl.ParameterizedQueries = true
	_, params = gl.ParamsFilter(context.Background(), "UPDATE `crf_v1_vs` SET `weight`=? WHERE patient_id = ?", "72", "p-1")
	assert.Nil(t, params)

	var _ gorm.ParamsFilter = gl
}
