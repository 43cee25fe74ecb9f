// Package app provides database initialization and setup.
package app

import (
	"context"
	"fmt"

	"github.com/guttosm/hr-portal-edge/config"
	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/guttosm/hr-portal-edge/internal/repository"
	"github.com/guttosm/hr-portal-edge/internal/service"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                    *repository.MongoDB
	Journal               service.JournalService
	JournalCircuitBreaker *circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB when any component needs it.
// Returns nil when MongoDB is not required. A failed connection is fatal
// only for the mongo cache backend; the journal is optional.
func InitializeDatabase(cfg config.Config) (*DatabaseComponents, error) {
	if !cfg.MongoRequired() {
		return nil, nil
	}

	db, err := repository.NewMongoDB(cfg.Database.URI, cfg.Database.DatabaseName)
	if err != nil {
		if cfg.Storage.Backend == config.BackendMongo {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without journal")
		return nil, nil
	}

	log.Info().Str("database", cfg.Database.DatabaseName).Msg("Connected to MongoDB")

	components := &DatabaseComponents{DB: db}
	if !cfg.Database.Enabled || !cfg.Database.JournalEnabled {
		return components, nil
	}

	if err := db.SetJournalTTL(context.Background(), cfg.Database.JournalTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to set journal TTL index (may already exist)")
	}

	components.JournalCircuitBreaker = circuitbreaker.New(breakerConfig(cfg.Database, "mongodb-journal"))
	journalRepo := repository.NewJournalRepositoryWithCircuitBreaker(repository.NewJournalRepository(db), components.JournalCircuitBreaker)
	components.Journal = service.NewJournalService(journalRepo)

	return components, nil
}

// breakerConfig builds breaker settings from the database thresholds and
// reports state transitions to the circuit breaker gauge.
func breakerConfig(cfg config.DatabaseConfig, name string) circuitbreaker.Config {
	metrics.SetCircuitBreakerState(name, int(circuitbreaker.StateClosed))
	return circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
		},
	}
}
