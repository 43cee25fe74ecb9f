package app

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
	"github.com/guttosm/hr-portal-edge/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StorageComponents holds the cache partition storage and what monitors it.
type StorageComponents struct {
	Storage *cachestorage.PartitionStorage
	// CircuitBreaker guards remote backends; nil for memory and badger.
	CircuitBreaker *circuitbreaker.CircuitBreaker
	// Checker pings a remote backend for readiness; nil for local backends.
	Checker interface {
		HealthCheck(ctx context.Context) error
	}
	close func() error
}

// Close releases the backend's resources.
func (s *StorageComponents) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// InitializeStorage opens the backend named by cfg.Storage.Backend. The mongo
// backend reuses db, which must be connected.
func InitializeStorage(cfg config.Config, db *repository.MongoDB) (*StorageComponents, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return &StorageComponents{Storage: cachestorage.NewMemory()}, nil

	case config.BackendBadger:
		return initializeBadger(cfg.Storage)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		backend := cachestorage.NewRedisBackend(client, cfg.Storage.RedisPrefix)
		if err := backend.HealthCheck(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Storage.RedisAddr).Msg("Redis unreachable at startup - cache will pass through until it recovers")
		}
		cb := cachestorage.NewCircuitBreaker(breakerConfig(cfg.Database, "redis-cache"))
		log.Info().Str("addr", cfg.Storage.RedisAddr).Msg("Using redis cache storage")
		return &StorageComponents{
			Storage:        cachestorage.New(cachestorage.WithCircuitBreaker(backend, cb)),
			CircuitBreaker: cb,
			Checker:        backend,
			close:          client.Close,
		}, nil

	case config.BackendMongo:
		if db == nil {
			return nil, errors.New("mongo cache backend requires a mongodb connection")
		}
		cb := cachestorage.NewCircuitBreaker(breakerConfig(cfg.Database, "mongodb-cache"))
		log.Info().Str("database", cfg.Database.DatabaseName).Msg("Using mongo cache storage")
		return &StorageComponents{
			Storage:        cachestorage.New(cachestorage.WithCircuitBreaker(repository.NewCacheRepository(db), cb)),
			CircuitBreaker: cb,
			Checker:        db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Storage.Backend)
	}
}

func initializeBadger(cfg config.StorageConfig) (*StorageComponents, error) {
	db, err := cachestorage.OpenBadger(cfg.BadgerPath, cfg.BadgerInMemory)
	if err != nil {
		return nil, err
	}
	backend, err := cachestorage.NewBadgerBackend(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", cfg.BadgerPath).Bool("in_memory", cfg.BadgerInMemory).Msg("Using badger cache storage")
	return &StorageComponents{
		Storage: cachestorage.New(backend),
		close:   closeBadger(backend, db),
	}, nil
}

func closeBadger(backend *cachestorage.BadgerBackend, db *badger.DB) func() error {
	return func() error {
		return errors.Join(backend.Close(), db.Close())
	}
}
