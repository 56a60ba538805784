package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ginrouter "crf-service/internal/adapter/gin/router"
	"crf-service/internal/config"
)

func testConfig(grpcPort string) *config.Config {
	cfg := &config.Config{}
	cfg.App.HTTPHost = "127.0.0.1"
	cfg.App.HTTPPort = "0"
	cfg.App.GRPCHealthPort = grpcPort
	cfg.App.ShutdownTimeoutSeconds = 5
	cfg.CORS.AllowOrigins = []string{"*"}
	cfg.Logger.ServiceName = "crf-service"
	return cfg
}

func listen(t *testing.T) net.Listener {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func healthy(context.Context) error { return nil }

func TestNew_GRPCDisabled(t *testing.T) {
	s := New(testConfig(""), zaptest.NewLogger(t), ginrouter.Handlers{}, nil, healthy)
	assert.NotNil(t, s.HTTP)
	assert.Nil(t, s.GRPC)
	assert.Nil(t, s.Health)
	assert.Equal(t, "127.0.0.1:0", s.HTTP.Addr)
}

func TestServe_HTTPAndGRPCHealth(t *testing.T) {
	s := New(testConfig("0"), zaptest.NewLogger(t), ginrouter.Handlers{}, nil, healthy)
	require.NotNil(t, s.GRPC)

	httpLis, grpcLis := listen(t), listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, httpLis, grpcLis) }()

	url := fmt.Sprintf("http://%s/health", httpLis.Addr())
	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	assert.Eventually(t, func() bool {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "crf-service"})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not stop")
	}
}
