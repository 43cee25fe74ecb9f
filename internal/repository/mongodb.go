// Package repository stores cache partitions and the request journal in MongoDB.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	partitionsCollection = "cache_partitions"
	entriesCollection    = "cache_entries"
	journalCollection    = "journal"
)

const journalTTLIndex = "journal_ttl"

type connectOptions struct {
	minPool, maxPool       uint64
	maxConnIdle            time.Duration
	connectTimeout         time.Duration
	serverSelectionTimeout time.Duration
	socketTimeout          time.Duration
	compressors            []string
}

// Option tunes the MongoDB client.
type Option func(*connectOptions)

// WithPoolSize bounds the connection pool.
func WithPoolSize(minSize, maxSize uint64) Option {
	return func(o *connectOptions) {
		o.minPool, o.maxPool = minSize, maxSize
	}
}

// WithConnectTimeout bounds the initial connect, ping and index creation.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *connectOptions) { o.connectTimeout = d }
}

// WithoutCompression disables wire compression, e.g. against servers built
// without zstd.
func WithoutCompression() Option {
	return func(o *connectOptions) { o.compressors = nil }
}

// MongoDB holds the client and the collections the edge uses.
type MongoDB struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Partitions *mongo.Collection
	Entries    *mongo.Collection
	Journal    *mongo.Collection
}

// NewMongoDB connects, pings and ensures indexes.
func NewMongoDB(uri, databaseName string, opts ...Option) (*MongoDB, error) {
	o := connectOptions{
		minPool:                5,
		maxPool:                50,
		maxConnIdle:            10 * time.Minute,
		connectTimeout:         10 * time.Second,
		serverSelectionTimeout: 5 * time.Second,
		socketTimeout:          30 * time.Second,
		compressors:            []string{"zstd", "snappy", "zlib"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMinPoolSize(o.minPool).
		SetMaxPoolSize(o.maxPool).
		SetMaxConnIdleTime(o.maxConnIdle).
		SetConnectTimeout(o.connectTimeout).
		SetServerSelectionTimeout(o.serverSelectionTimeout).
		SetSocketTimeout(o.socketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if len(o.compressors) > 0 {
		clientOptions.SetCompressors(o.compressors)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:     client,
		Database:   db,
		Partitions: db.Collection(partitionsCollection),
		Entries:    db.Collection(entriesCollection),
		Journal:    db.Collection(journalCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	if _, err := m.Partitions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("partition_name"),
	}); err != nil {
		return fmt.Errorf("index %s: %w", partitionsCollection, err)
	}

	if _, err := m.Entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "partition", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("partition_key"),
	}); err != nil {
		return fmt.Errorf("index %s: %w", entriesCollection, err)
	}

	// journal lookups are best effort; the TTL index is set separately
	_, _ = m.Journal.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetName("journal_request_id")},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("journal_kind_time")},
	})
	return nil
}

// SetJournalTTL replaces the expiry index on the journal collection.
func (m *MongoDB) SetJournalTTL(ctx context.Context, ttl time.Duration) error {
	// a changed expireAfterSeconds conflicts with the existing index
	_, _ = m.Journal.Indexes().DropOne(ctx, journalTTLIndex)

	_, err := m.Journal.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())).SetName(journalTTLIndex),
	})
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
