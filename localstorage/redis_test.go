package localstorage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRedisStorageGetSet exercises RedisStorage against a real server at
// localhost:6379. It skips when no server is reachable, since this engine
// does not ship a Redis server of its own.
func TestRedisStorageGetSet(t *testing.T) {
	s := NewRedisStorage("127.0.0.1:6379", 15, "aleph_test:", nil)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		t.Skipf("no redis server reachable: %v", err)
	}

	require.NoError(t, s.Set(context.Background(), "k", "v1"))
	v, err := s.Get(context.Background(), "k", nil)
	require.NoError(t, err)
	require.Equal(t, "v1", v)
}
