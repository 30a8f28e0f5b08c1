package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis adapts a go-redis client to the Store interface.  Values are
// persisted without TTL: the fallback store is the authoritative copy
// while the relational backend is down, so entries must not expire.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps the given client.  The prefix namespaces keys so the
// fallback collections do not collide with the response cache living
// in the same Redis database.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

// Get fetches the value for key.  A missing key is reported via the
// boolean, not as an error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set replaces the value stored under key.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}
