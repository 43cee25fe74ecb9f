// Package cachestorage provides named cache partitions of request/response
// pairs, with pluggable backends.
package cachestorage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned when no entry matches a key.
	ErrNotFound = errors.New("cache entry not found")
	// ErrPartitionDeleted is returned when writing to a partition that no longer exists.
	ErrPartitionDeleted = errors.New("cache partition deleted")
)

// Storage is the set of named partitions at one origin.
type Storage interface {
	// Open returns the named partition, creating it when absent.
	Open(ctx context.Context, name string) (Cache, error)
	Has(ctx context.Context, name string) (bool, error)
	// Delete removes a partition and all its entries. It reports whether the partition existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Keys lists partition names in creation order.
	Keys(ctx context.Context) ([]string, error)
	// Match looks the key up in every partition, in creation order.
	Match(ctx context.Context, key string) (*model.CachedResponse, error)
}

// Cache is a single named partition.
type Cache interface {
	Name() string
	Match(ctx context.Context, key string) (*model.CachedResponse, error)
	// Put stores a copy of resp, replacing any previous entry for key.
	Put(ctx context.Context, key string, resp *model.CachedResponse) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
}

// Backend is the primitive key/value layout a storage engine must provide.
type Backend interface {
	CreatePartition(ctx context.Context, name string) error
	HasPartition(ctx context.Context, name string) (bool, error)
	DeletePartition(ctx context.Context, name string) (bool, error)
	Partitions(ctx context.Context) ([]string, error)
	Get(ctx context.Context, partition, key string) (*model.CachedResponse, error)
	Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error
	Remove(ctx context.Context, partition, key string) (bool, error)
	EntryKeys(ctx context.Context, partition string) ([]string, error)
}

// Key builds the entry key for a request. Only the method and the
// path-and-query take part; scheme and host are the edge's own.
func Key(method, pathAndQuery string) string {
	if pathAndQuery == "" {
		pathAndQuery = "/"
	}
	return strings.ToUpper(method) + " " + pathAndQuery
}

// PartitionStorage implements Storage on top of a Backend.
type PartitionStorage struct {
	backend Backend
}

// New creates a Storage backed by b.
func New(b Backend) *PartitionStorage {
	return &PartitionStorage{backend: b}
}

// Backend returns the underlying backend.
func (s *PartitionStorage) Backend() Backend {
	return s.backend
}

// Open returns the named partition, creating it when absent.
func (s *PartitionStorage) Open(ctx context.Context, name string) (Cache, error) {
	if name == "" {
		return nil, fmt.Errorf("open partition: empty name")
	}
	if err := s.backend.CreatePartition(ctx, name); err != nil {
		metrics.RecordCacheOperation(name, "open", "error")
		return nil, fmt.Errorf("open partition %q: %w", name, err)
	}
	return &partition{name: name, backend: s.backend}, nil
}

// Has reports whether the named partition exists.
func (s *PartitionStorage) Has(ctx context.Context, name string) (bool, error) {
	return s.backend.HasPartition(ctx, name)
}

// Delete removes the named partition.
func (s *PartitionStorage) Delete(ctx context.Context, name string) (bool, error) {
	deleted, err := s.backend.DeletePartition(ctx, name)
	if err != nil {
		metrics.RecordCacheOperation(name, "delete_partition", "error")
		return false, fmt.Errorf("delete partition %q: %w", name, err)
	}
	if deleted {
		metrics.RecordCacheOperation(name, "delete_partition", "ok")
	}
	return deleted, nil
}

// Keys lists partition names in creation order.
func (s *PartitionStorage) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Partitions(ctx)
}

// Match looks the key up in every partition, in creation order. A partition
// that fails to answer is skipped; its error is returned only when no later
// partition holds the key.
func (s *PartitionStorage) Match(ctx context.Context, key string) (*model.CachedResponse, error) {
	names, err := s.backend.Partitions(ctx)
	if err != nil {
		return nil, err
	}
	var firstErr error
	for _, name := range names {
		resp, err := s.backend.Get(ctx, name, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			metrics.RecordCacheOperation(name, "match", "error")
			log.Warn().Err(err).Str("partition", name).Str("key", key).Msg("Partition lookup failed, trying next")
			if firstErr == nil {
				firstErr = fmt.Errorf("match %q in %q: %w", key, name, err)
			}
			continue
		}
		metrics.RecordCacheOperation(name, "match", "hit")
		return resp, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	metrics.RecordCacheOperation("*", "match", "miss")
	return nil, ErrNotFound
}

type partition struct {
	name    string
	backend Backend
}

func (p *partition) Name() string { return p.name }

func (p *partition) Match(ctx context.Context, key string) (*model.CachedResponse, error) {
	resp, err := p.backend.Get(ctx, p.name, key)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.RecordCacheOperation(p.name, "match", "miss")
	case err != nil:
		metrics.RecordCacheOperation(p.name, "match", "error")
	default:
		metrics.RecordCacheOperation(p.name, "match", "hit")
	}
	return resp, err
}

func (p *partition) Put(ctx context.Context, key string, resp *model.CachedResponse) error {
	if resp == nil {
		return fmt.Errorf("put %q: nil response", key)
	}
	if err := p.backend.Set(ctx, p.name, key, resp.Clone()); err != nil {
		metrics.RecordCacheOperation(p.name, "put", "error")
		return fmt.Errorf("put %q into %q: %w", key, p.name, err)
	}
	metrics.RecordCacheOperation(p.name, "put", "ok")
	log.Debug().Str("partition", p.name).Str("key", key).Msg("Cache entry stored")
	return nil
}

func (p *partition) Delete(ctx context.Context, key string) (bool, error) {
	return p.backend.Remove(ctx, p.name, key)
}

func (p *partition) Keys(ctx context.Context) ([]string, error) {
	return p.backend.EntryKeys(ctx, p.name)
}
