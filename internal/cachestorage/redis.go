package cachestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// RedisBackend stores partitions in Redis so several edge instances share
// one origin's caches.
//
// Layout, all under prefix:
//
//	<prefix>:seq                  creation counter
//	<prefix>:partitions           sorted set of partition names scored by creation
//	<prefix>:entries:<name>       hash key -> JSON response
//	<prefix>:order:<name>         sorted set of keys scored by write order
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a backend using client. An empty prefix defaults to "hr-edge".
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "hr-edge"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

// HealthCheck pings the server.
func (r *RedisBackend) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) seqKey() string        { return r.prefix + ":seq" }
func (r *RedisBackend) partitionsKey() string { return r.prefix + ":partitions" }
func (r *RedisBackend) entriesKey(name string) string {
	return r.prefix + ":entries:" + name
}
func (r *RedisBackend) orderKey(name string) string {
	return r.prefix + ":order:" + name
}

func (r *RedisBackend) CreatePartition(ctx context.Context, name string) error {
	exists, err := r.HasPartition(ctx, name)
	if err != nil || exists {
		return err
	}
	n, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return err
	}
	return r.client.ZAddNX(ctx, r.partitionsKey(), redis.Z{Score: float64(n), Member: name}).Err()
}

func (r *RedisBackend) HasPartition(ctx context.Context, name string) (bool, error) {
	err := r.client.ZScore(ctx, r.partitionsKey(), name).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisBackend) DeletePartition(ctx context.Context, name string) (bool, error) {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, r.partitionsKey(), name)
		pipe.Del(ctx, r.entriesKey(name), r.orderKey(name))
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

func (r *RedisBackend) Partitions(ctx context.Context) ([]string, error) {
	names, err := r.client.ZRange(ctx, r.partitionsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *RedisBackend) Get(ctx context.Context, partition, key string) (*model.CachedResponse, error) {
	data, err := r.client.HGet(ctx, r.entriesKey(partition), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var resp model.CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode entry %q: %w", key, err)
	}
	return &resp, nil
}

func (r *RedisBackend) Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error {
	exists, err := r.HasPartition(ctx, partition)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPartitionDeleted
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode entry %q: %w", key, err)
	}
	n, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.entriesKey(partition), key, data)
		pipe.ZAdd(ctx, r.orderKey(partition), redis.Z{Score: float64(n), Member: key})
		return nil
	})
	return err
}

func (r *RedisBackend) Remove(ctx context.Context, partition, key string) (bool, error) {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, r.entriesKey(partition), key)
		pipe.ZRem(ctx, r.orderKey(partition), key)
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() > 0, nil
}

func (r *RedisBackend) EntryKeys(ctx context.Context, partition string) ([]string, error) {
	keys, err := r.client.ZRange(ctx, r.orderKey(partition), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
