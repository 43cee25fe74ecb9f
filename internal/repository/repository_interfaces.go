package repository

import (
	"context"
)

// JournalRepositoryInterface defines the interface for journal repository operations.
type JournalRepositoryInterface interface {
	Create(ctx context.Context, entry *JournalDocument) error
	CreateMany(ctx context.Context, entries []*JournalDocument) error
	Query(ctx context.Context, opts JournalQueryOptions) ([]*JournalDocument, error)
	Count(ctx context.Context, opts JournalQueryOptions) (int64, error)
}
