package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PartitionDocument is a cache partition record.
type PartitionDocument struct {
	Name      string    `bson:"name"`
	Seq       int64     `bson:"seq"`
	CreatedAt time.Time `bson:"created_at"`
}

// EntryDocument is one cached response within a partition.
type EntryDocument struct {
	Partition string               `bson:"partition"`
	Key       string               `bson:"key"`
	Seq       int64                `bson:"seq"`
	Response  model.CachedResponse `bson:"response"`
}

// CacheRepository stores cache partitions in MongoDB. It implements cachestorage.Backend.
type CacheRepository struct {
	partitions *mongo.Collection
	entries    *mongo.Collection
}

// NewCacheRepository creates a new cache repository.
func NewCacheRepository(db *MongoDB) *CacheRepository {
	return &CacheRepository{
		partitions: db.Partitions,
		entries:    db.Entries,
	}
}

// nextSeq orders partitions and entries by creation.
func nextSeq() int64 {
	return time.Now().UnixNano()
}

// CreatePartition inserts the partition record if missing.
func (r *CacheRepository) CreatePartition(ctx context.Context, name string) error {
	now := time.Now()
	_, err := r.partitions.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": PartitionDocument{Name: name, Seq: nextSeq(), CreatedAt: now}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// HasPartition reports whether the partition exists.
func (r *CacheRepository) HasPartition(ctx context.Context, name string) (bool, error) {
	n, err := r.partitions.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeletePartition removes the partition and its entries.
func (r *CacheRepository) DeletePartition(ctx context.Context, name string) (bool, error) {
	res, err := r.partitions.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	if _, err := r.entries.DeleteMany(ctx, bson.M{"partition": name}); err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Partitions lists partition names in creation order.
func (r *CacheRepository) Partitions(ctx context.Context) ([]string, error) {
	cursor, err := r.partitions.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []PartitionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

// Get returns the stored response or cachestorage.ErrNotFound.
func (r *CacheRepository) Get(ctx context.Context, partition, key string) (*model.CachedResponse, error) {
	var doc EntryDocument
	err := r.entries.FindOne(ctx, bson.M{"partition": partition, "key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cachestorage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Response, nil
}

// Set upserts the entry. Writes to a missing partition are rejected.
func (r *CacheRepository) Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error {
	exists, err := r.HasPartition(ctx, partition)
	if err != nil {
		return err
	}
	if !exists {
		return cachestorage.ErrPartitionDeleted
	}
	doc := EntryDocument{Partition: partition, Key: key, Seq: nextSeq(), Response: *resp}
	_, err = r.entries.ReplaceOne(ctx,
		bson.M{"partition": partition, "key": key},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Remove deletes one entry.
func (r *CacheRepository) Remove(ctx context.Context, partition, key string) (bool, error) {
	res, err := r.entries.DeleteOne(ctx, bson.M{"partition": partition, "key": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// EntryKeys lists a partition's keys in write order.
func (r *CacheRepository) EntryKeys(ctx context.Context, partition string) ([]string, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetProjection(bson.M{"key": 1, "seq": 1})
	cursor, err := r.entries.Find(ctx, bson.M{"partition": partition}, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []EntryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(docs))
	for _, d := range docs {
		keys = append(keys, d.Key)
	}
	return keys, nil
}
