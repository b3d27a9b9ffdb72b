package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis tests need a live server: SNOOKER_TEST_REDIS_URL=redis://localhost:6379/15
func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("SNOOKER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SNOOKER_TEST_REDIS_URL not set")
	}
	return url
}

func TestRedisStore(t *testing.T) {
	url := redisURL(t)

	testRepository(t, func(t *testing.T) Repository {
		opt, err := redis.ParseURL(url)
		require.NoError(t, err)
		client := redis.NewClient(opt)

		prefix := fmt.Sprintf("snooker-test-%d", time.Now().UnixNano())
		s := NewRedisStore(client, prefix, WithHistoryLimit(3))
		t.Cleanup(func() {
			_ = s.ClearAll(context.Background())
			s.Close()
		})
		return s
	})
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
