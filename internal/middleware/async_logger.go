package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/logger"
	"github.com/guttosm/hr-portal-edge/internal/service"
)

// JournalWriterConfig holds configuration for the journal writer.
type JournalWriterConfig struct {
	// BufferSize is the size of the entry channel buffer.
	BufferSize int
	// NumWorkers is the number of worker goroutines writing batches.
	NumWorkers int
	// BatchSize is the most entries written in one RecordMany call.
	BatchSize int
	// FlushInterval bounds how long a partial batch waits.
	FlushInterval time.Duration
	// WriteTimeout is the timeout for writing one batch.
	WriteTimeout time.Duration
}

// DefaultJournalWriterConfig returns sensible defaults for the journal writer.
func DefaultJournalWriterConfig() JournalWriterConfig {
	return JournalWriterConfig{
		BufferSize:    1000,
		NumWorkers:    2,
		BatchSize:     50,
		FlushInterval: time.Second,
		WriteTimeout:  5 * time.Second,
	}
}

// JournalWriter buffers journal entries and writes them in batches from a
// fixed worker pool, so request handling never waits on MongoDB.
type JournalWriter struct {
	journal       service.JournalService
	entryCh       chan *model.JournalEntry
	wg            sync.WaitGroup
	mu            sync.RWMutex
	closed        bool
	batchSize     int
	flushInterval time.Duration
	writeTimeout  time.Duration

	enqueued atomic.Int64
	dropped  atomic.Int64
	written  atomic.Int64
	errors   atomic.Int64
}

// NewJournalWriter starts the worker pool. It returns nil when journal is nil,
// and every JournalWriter method is safe to call on a nil receiver.
func NewJournalWriter(journal service.JournalService, cfg JournalWriterConfig) *JournalWriter {
	if journal == nil {
		return nil
	}
	defaults := DefaultJournalWriterConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaults.NumWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaults.FlushInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}

	w := &JournalWriter{
		journal:       journal,
		entryCh:       make(chan *model.JournalEntry, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		writeTimeout:  cfg.WriteTimeout,
	}
	for i := 0; i < cfg.NumWorkers; i++ {
		w.wg.Add(1)
		go w.worker()
	}
	return w
}

func (w *JournalWriter) worker() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]*model.JournalEntry, 0, w.batchSize)
	for {
		select {
		case entry, ok := <-w.entryCh:
			if !ok {
				w.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = make([]*model.JournalEntry, 0, w.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = make([]*model.JournalEntry, 0, w.batchSize)
			}
		}
	}
}

func (w *JournalWriter) flush(batch []*model.JournalEntry) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
	defer cancel()

	var err error
	if len(batch) == 1 {
		err = w.journal.Record(ctx, batch[0])
	} else {
		err = w.journal.RecordMany(ctx, batch)
	}
	if err != nil {
		w.errors.Add(int64(len(batch)))
		log := logger.Logger()
		log.Warn().Err(err).Int("entries", len(batch)).Msg("Failed to write journal entries")
		return
	}
	w.written.Add(int64(len(batch)))
}

// Log enqueues an entry. It returns false when the buffer is full or the
// writer is stopped; the entry is then dropped.
func (w *JournalWriter) Log(entry *model.JournalEntry) bool {
	if w == nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.dropped.Add(1)
		return false
	}
	select {
	case w.entryCh <- entry:
		w.enqueued.Add(1)
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Stop flushes buffered entries and waits for the workers to exit.
func (w *JournalWriter) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.entryCh)
	w.mu.Unlock()

	w.wg.Wait()
}

// Stats returns current writer statistics.
func (w *JournalWriter) Stats() (enqueued, dropped, written, errors int64) {
	if w == nil {
		return 0, 0, 0, 0
	}
	return w.enqueued.Load(), w.dropped.Load(), w.written.Load(), w.errors.Load()
}
