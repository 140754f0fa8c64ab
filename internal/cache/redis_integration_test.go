//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	defer func() { _ = c.Terminate(ctx) }()

	host, err := c.Host(ctx)
	gt.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	gt.NoError(t, err)

	client, err := Conn(ctx, host, port.Port(), "", 0, 5*time.Second)
	gt.NoError(t, err)
	r := NewRedis(client, "test:")
	defer r.Close()

	_, ok, err := r.Get(ctx, "missing")
	gt.NoError(t, err)
	gt.False(t, ok)

	gt.NoError(t, r.Set(ctx, "history:INFY.NS", []byte(`[1,2]`), time.Minute))
	b, ok, err := r.Get(ctx, "history:INFY.NS")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, string(b), `[1,2]`)
}
