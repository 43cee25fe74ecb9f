package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalDocument is a journal entry as stored in MongoDB.
type JournalDocument struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Kind       string                 `bson:"kind" json:"kind"`
	Level      string                 `bson:"level" json:"level"`
	Message    string                 `bson:"message" json:"message"`
	RequestID  string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method     string                 `bson:"method,omitempty" json:"method,omitempty"`
	Path       string                 `bson:"path,omitempty" json:"path,omitempty"`
	StatusCode int                    `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64                  `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string                 `bson:"error,omitempty" json:"error,omitempty"`
	Strategy   string                 `bson:"strategy,omitempty" json:"strategy,omitempty"`
	Source     string                 `bson:"source,omitempty" json:"source,omitempty"`
	Event      string                 `bson:"event,omitempty" json:"event,omitempty"`
	Version    string                 `bson:"version,omitempty" json:"version,omitempty"`
	Fields     map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// JournalQueryOptions provides options for querying the journal.
type JournalQueryOptions struct {
	Kind      string
	RequestID string
	Strategy  string
	Event     string
	Path      string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
}

func (opts JournalQueryOptions) filter() bson.M {
	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = opts.Kind
	}
	if opts.RequestID != "" {
		filter["request_id"] = opts.RequestID
	}
	if opts.Strategy != "" {
		filter["strategy"] = opts.Strategy
	}
	if opts.Event != "" {
		filter["event"] = opts.Event
	}
	if opts.Path != "" {
		filter["path"] = bson.M{"$regex": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(opts.Path)}}
	}
	if opts.StartTime != nil || opts.EndTime != nil {
		timeFilter := bson.M{}
		if opts.StartTime != nil {
			timeFilter["$gte"] = *opts.StartTime
		}
		if opts.EndTime != nil {
			timeFilter["$lte"] = *opts.EndTime
		}
		filter["timestamp"] = timeFilter
	}
	return filter
}

// JournalRepository provides journal operations at the repository level.
type JournalRepository struct {
	collection *mongo.Collection
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(db *MongoDB) *JournalRepository {
	return &JournalRepository{
		collection: db.Journal,
	}
}

// Create inserts a single entry.
func (r *JournalRepository) Create(ctx context.Context, entry *JournalDocument) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// CreateMany inserts entries in bulk.
func (r *JournalRepository) CreateMany(ctx context.Context, entries []*JournalDocument) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		if entry.ID.IsZero() {
			entry.ID = primitive.NewObjectID()
		}
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		docs[i] = entry
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Query returns entries matching opts, newest first.
func (r *JournalRepository) Query(ctx context.Context, opts JournalQueryOptions) ([]*JournalDocument, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, opts.filter(), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	entries := []*JournalDocument{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Count returns the number of entries matching opts.
func (r *JournalRepository) Count(ctx context.Context, opts JournalQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, opts.filter())
}
