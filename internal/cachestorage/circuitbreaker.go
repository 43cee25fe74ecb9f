package cachestorage

import (
	"context"
	"errors"

	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

// NewCircuitBreaker builds a breaker for a cache backend. Misses and writes
// racing a partition deletion are normal outcomes and never trip it.
func NewCircuitBreaker(cfg circuitbreaker.Config) *circuitbreaker.CircuitBreaker {
	cfg.IsSuccessful = IsExpected
	return circuitbreaker.New(cfg)
}

// IsExpected reports whether err is a normal cache outcome rather than a
// backend failure.
func IsExpected(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPartitionDeleted)
}

// BreakerBackend wraps a remote Backend with circuit breaker protection.
// While the circuit is open, lookups report a miss and writes fail fast, so
// the controller degrades to uncached passthrough.
type BreakerBackend struct {
	backend        Backend
	circuitBreaker *circuitbreaker.CircuitBreaker
}

var _ Backend = (*BreakerBackend)(nil)

// WithCircuitBreaker wraps b. cb should come from NewCircuitBreaker.
func WithCircuitBreaker(b Backend, cb *circuitbreaker.CircuitBreaker) *BreakerBackend {
	return &BreakerBackend{backend: b, circuitBreaker: cb}
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (b *BreakerBackend) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return b.circuitBreaker
}

func guard[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = fn()
		return cbErr
	})
	return result, err
}

func (b *BreakerBackend) CreatePartition(ctx context.Context, name string) error {
	return b.circuitBreaker.Execute(ctx, func() error {
		return b.backend.CreatePartition(ctx, name)
	})
}

func (b *BreakerBackend) HasPartition(ctx context.Context, name string) (bool, error) {
	return guard(ctx, b.circuitBreaker, func() (bool, error) {
		return b.backend.HasPartition(ctx, name)
	})
}

func (b *BreakerBackend) DeletePartition(ctx context.Context, name string) (bool, error) {
	return guard(ctx, b.circuitBreaker, func() (bool, error) {
		return b.backend.DeletePartition(ctx, name)
	})
}

func (b *BreakerBackend) Partitions(ctx context.Context) ([]string, error) {
	return guard(ctx, b.circuitBreaker, func() ([]string, error) {
		return b.backend.Partitions(ctx)
	})
}

// Get reports ErrNotFound while the circuit is open.
func (b *BreakerBackend) Get(ctx context.Context, partition, key string) (*model.CachedResponse, error) {
	resp, err := guard(ctx, b.circuitBreaker, func() (*model.CachedResponse, error) {
		return b.backend.Get(ctx, partition, key)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, ErrNotFound
	}
	return resp, err
}

func (b *BreakerBackend) Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error {
	return b.circuitBreaker.Execute(ctx, func() error {
		return b.backend.Set(ctx, partition, key, resp)
	})
}

func (b *BreakerBackend) Remove(ctx context.Context, partition, key string) (bool, error) {
	return guard(ctx, b.circuitBreaker, func() (bool, error) {
		return b.backend.Remove(ctx, partition, key)
	})
}

func (b *BreakerBackend) EntryKeys(ctx context.Context, partition string) ([]string, error) {
	return guard(ctx, b.circuitBreaker, func() ([]string, error) {
		return b.backend.EntryKeys(ctx, partition)
	})
}
