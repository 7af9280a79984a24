package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/batch-seat-reservations/internal/adapters/redis"
	"github.com/robertarktes/batch-seat-reservations/internal/observability"
	"github.com/robertarktes/batch-seat-reservations/internal/seatstore"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	t.Run("slot", func(t *testing.T) {
		slot := redisadapter.NewSlot(client, "cg_seats")

		_, ok, err := slot.Get(ctx)
		require.NoError(t, err)
		require.False(t, ok)

		store := seatstore.New(slot, 18, observability.NopLogger())
		require.Equal(t, 18, store.Read(ctx))
		require.NoError(t, store.Write(ctx, 17))

		raw, err := client.Get(ctx, "cg_seats").Result()
		require.NoError(t, err)
		require.Equal(t, "17", raw)
	})

	t.Run("fixed window counter", func(t *testing.T) {
		cache := redisadapter.NewCache(client)
		for i := int64(1); i <= 3; i++ {
			n, err := cache.Incr(ctx, "rl:test", time.Minute)
			require.NoError(t, err)
			require.Equal(t, i, n)
		}
		ttl, err := client.TTL(ctx, "rl:test").Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
	})

	t.Run("replay store keeps first response", func(t *testing.T) {
		replays := redisadapter.NewReplayStore(client)

		resp, err := replays.Load(ctx, "missing-key-0000")
		require.NoError(t, err)
		require.Nil(t, resp)

		first := redisadapter.StoredResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"seats_left":17}`)}
		require.NoError(t, replays.Save(ctx, "key-000000000001", first, time.Minute))
		require.NoError(t, replays.Save(ctx, "key-000000000001", redisadapter.StoredResponse{Status: 500}, time.Minute))

		resp, err = replays.Load(ctx, "key-000000000001")
		require.NoError(t, err)
		require.Equal(t, first, *resp)
	})
}
