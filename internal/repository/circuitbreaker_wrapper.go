package repository

import (
	"context"
	"errors"

	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
)

// JournalRepositoryWithCircuitBreaker wraps JournalRepository with circuit breaker protection.
type JournalRepositoryWithCircuitBreaker struct {
	repo           JournalRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewJournalRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewJournalRepositoryWithCircuitBreaker(repo JournalRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *JournalRepositoryWithCircuitBreaker {
	return &JournalRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Create stores a single entry. If the circuit is open the entry is dropped
// (the journal is non-critical).
func (r *JournalRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *JournalDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, entry)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// CreateMany stores entries in bulk. If the circuit is open they are dropped.
func (r *JournalRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*JournalDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, entries)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query retrieves entries with circuit breaker protection.
func (r *JournalRepositoryWithCircuitBreaker) Query(ctx context.Context, opts JournalQueryOptions) ([]*JournalDocument, error) {
	var result []*JournalDocument
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Query(ctx, opts)
		return cbErr
	})
	return result, err
}

// Count returns the number of matching entries with circuit breaker protection.
func (r *JournalRepositoryWithCircuitBreaker) Count(ctx context.Context, opts JournalQueryOptions) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Count(ctx, opts)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *JournalRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
