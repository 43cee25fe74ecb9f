// Package service contains the journal service that persists proxied
// requests and controller lifecycle events.
package service

import (
	"context"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalService defines the interface for journal operations.
type JournalService interface {
	// Record stores a single entry.
	Record(ctx context.Context, entry *model.JournalEntry) error

	// RecordMany stores entries in bulk.
	RecordMany(ctx context.Context, entries []*model.JournalEntry) error

	// Query returns entries matching opts, newest first.
	Query(ctx context.Context, opts model.JournalQueryOptions) ([]model.JournalEntry, error)

	// Count returns the number of entries matching opts.
	Count(ctx context.Context, opts model.JournalQueryOptions) (int64, error)
}

// JournalServiceImpl implements JournalService on a journal repository.
type JournalServiceImpl struct {
	repo repository.JournalRepositoryInterface
}

// NewJournalService creates a journal service.
func NewJournalService(repo repository.JournalRepositoryInterface) JournalService {
	return &JournalServiceImpl{repo: repo}
}

// Record stores a single entry, assigning an ID and timestamp when missing.
func (s *JournalServiceImpl) Record(ctx context.Context, entry *model.JournalEntry) error {
	return s.repo.Create(ctx, toDocument(entry))
}

// RecordMany stores entries in bulk.
func (s *JournalServiceImpl) RecordMany(ctx context.Context, entries []*model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]*repository.JournalDocument, len(entries))
	for i, entry := range entries {
		docs[i] = toDocument(entry)
	}
	return s.repo.CreateMany(ctx, docs)
}

// Query returns entries matching opts, newest first.
func (s *JournalServiceImpl) Query(ctx context.Context, opts model.JournalQueryOptions) ([]model.JournalEntry, error) {
	docs, err := s.repo.Query(ctx, toRepositoryOptions(opts))
	if err != nil {
		return nil, err
	}
	entries := make([]model.JournalEntry, len(docs))
	for i, doc := range docs {
		entries[i] = fromDocument(doc)
	}
	return entries, nil
}

// Count returns the number of entries matching opts.
func (s *JournalServiceImpl) Count(ctx context.Context, opts model.JournalQueryOptions) (int64, error) {
	return s.repo.Count(ctx, toRepositoryOptions(opts))
}

func toRepositoryOptions(opts model.JournalQueryOptions) repository.JournalQueryOptions {
	return repository.JournalQueryOptions{
		Kind:      opts.Kind,
		RequestID: opts.RequestID,
		Strategy:  opts.Strategy,
		Event:     opts.Event,
		Path:      opts.Path,
		StartTime: opts.StartTime,
		EndTime:   opts.EndTime,
		Limit:     opts.Limit,
		Skip:      opts.Skip,
	}
}

func toDocument(entry *model.JournalEntry) *repository.JournalDocument {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return &repository.JournalDocument{
		ID:         entry.ID,
		Timestamp:  entry.Timestamp,
		Kind:       entry.Kind,
		Level:      entry.Level,
		Message:    entry.Message,
		RequestID:  entry.RequestID,
		Method:     entry.Method,
		Path:       entry.Path,
		StatusCode: entry.StatusCode,
		Duration:   entry.Duration,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		Error:      entry.Error,
		Strategy:   entry.Strategy,
		Source:     entry.Source,
		Event:      entry.Event,
		Version:    entry.Version,
		Fields:     entry.Fields,
	}
}

func fromDocument(doc *repository.JournalDocument) model.JournalEntry {
	return model.JournalEntry{
		ID:         doc.ID,
		Timestamp:  doc.Timestamp,
		Kind:       doc.Kind,
		Level:      doc.Level,
		Message:    doc.Message,
		RequestID:  doc.RequestID,
		Method:     doc.Method,
		Path:       doc.Path,
		StatusCode: doc.StatusCode,
		Duration:   doc.Duration,
		IP:         doc.IP,
		UserAgent:  doc.UserAgent,
		Error:      doc.Error,
		Strategy:   doc.Strategy,
		Source:     doc.Source,
		Event:      doc.Event,
		Version:    doc.Version,
		Fields:     doc.Fields,
	}
}
