package cachestorage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

// Key namespace:
//
//	"p:<name>"              partition record, value = creation sequence (uint64, big endian)
//	"e:<name>\x00<key>"     entry, value = badgerEntry (JSON)
const (
	prefixPartition = "p:"
	prefixEntry     = "e:"
	seqKey          = "meta:seq"
)

type badgerEntry struct {
	Seq      uint64                `json:"seq"`
	Key      string                `json:"key"`
	Response *model.CachedResponse `json:"response"`
}

// BadgerBackend stores partitions in an embedded BadgerDB.
type BadgerBackend struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger opens (or creates) a Badger database at path. With inMemory set
// nothing touches disk.
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return db, nil
}

// NewBadgerBackend wraps an open database.
func NewBadgerBackend(db *badger.DB) (*BadgerBackend, error) {
	seq, err := db.GetSequence([]byte(seqKey), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to lease sequence: %w", err)
	}
	return &BadgerBackend{db: db, seq: seq}, nil
}

// Close releases the sequence lease. The database itself is owned by the caller.
func (b *BadgerBackend) Close() error {
	return b.seq.Release()
}

func keyPartition(name string) []byte {
	return []byte(prefixPartition + name)
}

func keyEntryPrefix(partition string) []byte {
	return []byte(prefixEntry + partition + "\x00")
}

func keyEntry(partition, key string) []byte {
	return append(keyEntryPrefix(partition), key...)
}

func (b *BadgerBackend) CreatePartition(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyPartition(name))
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		n, err := b.seq.Next()
		if err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], n)
		return txn.Set(keyPartition(name), buf[:])
	})
}

func (b *BadgerBackend) HasPartition(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(keyPartition(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (b *BadgerBackend) DeletePartition(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deleted := false
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyPartition(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyEntryPrefix(name)
		it := txn.NewIterator(opts)
		var keysToDelete [][]byte
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			keysToDelete = append(keysToDelete, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		deleted = true
		return txn.Delete(keyPartition(name))
	})
	return deleted, err
}

func (b *BadgerBackend) Partitions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type named struct {
		name string
		seq  uint64
	}
	var found []named
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixPartition)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(prefixPartition):])
			err := item.Value(func(val []byte) error {
				if len(val) != 8 {
					return fmt.Errorf("corrupt partition record %q", name)
				}
				found = append(found, named{name: name, seq: binary.BigEndian.Uint64(val)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.name)
	}
	return names, nil
}

func (b *BadgerBackend) Get(ctx context.Context, partition, key string) (*model.CachedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entry badgerEntry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyEntry(partition, key))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return entry.Response, nil
}

func (b *BadgerBackend) Set(ctx context.Context, partition, key string, resp *model.CachedResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := b.seq.Next()
	if err != nil {
		return err
	}
	data, err := json.Marshal(badgerEntry{Seq: n, Key: key, Response: resp})
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyPartition(partition)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrPartitionDeleted
			}
			return err
		}
		return txn.Set(keyEntry(partition, key), data)
	})
	// concurrent puts to the same key race; newest wins on retry
	if errors.Is(err, badger.ErrConflict) {
		return b.Set(ctx, partition, key, resp)
	}
	return err
}

func (b *BadgerBackend) Remove(ctx context.Context, partition, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	removed := false
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyEntry(partition, key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		return txn.Delete(keyEntry(partition, key))
	})
	return removed, err
}

func (b *BadgerBackend) EntryKeys(ctx context.Context, partition string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []badgerEntry
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyEntryPrefix(partition)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			var e badgerEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			e.Response = nil
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}
