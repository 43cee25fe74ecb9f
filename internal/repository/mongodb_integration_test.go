//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongoDB_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)

	t.Run("collections are bound", func(t *testing.T) {
		assert.Equal(t, partitionsCollection, db.Partitions.Name())
		assert.Equal(t, entriesCollection, db.Entries.Name())
		assert.Equal(t, journalCollection, db.Journal.Name())
	})

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, db.HealthCheck(ctx))
	})

	t.Run("journal TTL is replaced", func(t *testing.T) {
		require.NoError(t, db.SetJournalTTL(ctx, 24*time.Hour))
		require.NoError(t, db.SetJournalTTL(ctx, 48*time.Hour))

		cursor, err := db.Journal.Indexes().List(ctx)
		require.NoError(t, err)
		var indexes []bson.M
		require.NoError(t, cursor.All(ctx, &indexes))

		var expiry interface{}
		for _, idx := range indexes {
			if idx["name"] == journalTTLIndex {
				expiry = idx["expireAfterSeconds"]
			}
		}
		assert.EqualValues(t, 48*60*60, expiry)
	})
}

func TestNewMongoDB_Unreachable(t *testing.T) {
	_, err := NewMongoDB("mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "unreachable",
		WithConnectTimeout(500*time.Millisecond), WithoutCompression(), WithPoolSize(0, 1))

	assert.Error(t, err)
}
