package redisblob

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNewDefaultsKeyPrefix(t *testing.T) {
	s, err := New(Config{Client: redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})})
	require.NoError(t, err)

	impl := s.(*store)
	require.Equal(t, "springai-actions:conversation:", impl.prefix)
	require.Equal(t, "springai-actions:conversation:conv-1", impl.key("conv-1"))
}

func TestNewHonorsCustomPrefixAndTTL(t *testing.T) {
	s, err := New(Config{
		Client:    redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}),
		KeyPrefix: "myapp:",
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)

	impl := s.(*store)
	require.Equal(t, "myapp:", impl.prefix)
	require.Equal(t, 5*time.Minute, impl.ttl)
	require.Equal(t, "myapp:conv-1", impl.key("conv-1"))
}
