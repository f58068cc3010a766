package capacity_test

import (
	"context"
	"testing"
	"time"

	"lunchbox-orders/internal/capacity"
	"lunchbox-orders/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCacheIntegration exercises the capacity cache against a real Redis
// container.
func TestCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	cache := capacity.NewCache(client, time.Minute)

	_, ok := cache.Get(ctx, "2024-06-03")
	assert.False(t, ok, "Expected cold cache to miss")

	snap := models.DailyCapacity{
		Date:              "2024-06-03",
		MaxCapa:           models.MaxDailyCapacity,
		CurrentOrderCount: 7,
		Remaining:         models.MaxDailyCapacity - 7,
	}
	cache.Set(ctx, snap)

	got, ok := cache.Get(ctx, "2024-06-03")
	require.True(t, ok, "Expected cache hit after set")
	assert.Equal(t, snap, got)

	require.NoError(t, cache.Delete(ctx, []string{"2024-06-03"}))
	_, ok = cache.Get(ctx, "2024-06-03")
	assert.False(t, ok, "Expected miss after invalidation")
}

func TestCacheTTLFloor(t *testing.T) {
	cache := capacity.NewCache(nil, 0)
	assert.Equal(t, 5*time.Second, cache.TTL)
}
