package skins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nzvengeance/gw2style/internal/models"
)

const (
	redisCacheKey   = "gw2_skins_cache"
	redisVersionKey = "gw2_skins_version"
)

// RedisStore keeps the snapshot under a pair of Redis keys: the JSON body
// and its version string.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Load(ctx context.Context) (*models.SkinSnapshot, error) {
	raw, err := r.client.Get(ctx, redisCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot from redis: %w", err)
	}

	var snap models.SkinSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot from redis: %w", err)
	}
	return &snap, nil
}

func (r *RedisStore) Save(ctx context.Context, snap *models.SkinSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisCacheKey, data, 0)
		pipe.Set(ctx, redisVersionKey, snap.Version, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing snapshot to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, redisCacheKey, redisVersionKey).Err(); err != nil {
		return fmt.Errorf("clearing snapshot from redis: %w", err)
	}
	return nil
}

