package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:jti:"

func Key(jti string) string {
	return keyPrefix + jti
}

// RedisDenylist stores revoked token ids as keys that expire with the token.
type RedisDenylist struct {
	rdb *redis.Client
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, Key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis: revoke %s: %w", jti, err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, Key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: lookup %s: %w", jti, err)
	}
	return n > 0, nil
}

func (d *RedisDenylist) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *RedisDenylist) Close() error {
	return d.rdb.Close()
}
