package testing

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetRedisClient connects to the redis used by integration tests (REDIS_HOST, REDIS_PORT, REDIS_PASS).
// Keys matching cleanupPattern are removed when the test ends.
func GetRedisClient(t *testing.T, cleanupPattern string) *redis.Client {
	t.Helper()

	addr := net.JoinHostPort(envOr("REDIS_HOST", "localhost"), envOr("REDIS_PORT", "6379"))
	t.Logf("using redis at [%s]", addr)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err())

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()

		iter := rdb.Scan(cleanupCtx, 0, cleanupPattern, 100).Iterator()
		for iter.Next(cleanupCtx) {
			_ = rdb.Del(cleanupCtx, iter.Val()).Err()
		}
		if err := iter.Err(); err != nil {
			t.Logf("redis cleanup [%s]: %s", cleanupPattern, err)
		}
		_ = rdb.Close()
	})

	return rdb
}
