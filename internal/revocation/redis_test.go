package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(t *testing.T) *RedisDenylist {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	d := NewRedisDenylist(rdb)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestKey(t *testing.T) {
	assert.Equal(t, "revoked:jti:abc", Key("abc"))
}

func TestRedisDenylist_ErrorsWhenUnavailable(t *testing.T) {
	d := unreachable(t)
	ctx := context.Background()

	_, err := d.IsRevoked(ctx, "jti-1")
	require.Error(t, err)
	assert.Error(t, d.Revoke(ctx, "jti-1", time.Minute))
	assert.Error(t, d.Ping(ctx))
}

func TestRedisDenylist_SkipsEmptyInput(t *testing.T) {
	d := unreachable(t)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, d.Revoke(ctx, "jti", 0))
}
