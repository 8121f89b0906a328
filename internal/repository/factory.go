package repository

import (
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/postgres"
	"github.com/flexprice/docforge/internal/repository/memory"
	postgresRepo "github.com/flexprice/docforge/internal/repository/postgres"
	"github.com/flexprice/docforge/internal/sentry"
)

type RepositoryType string

const (
	MemoryRepo   RepositoryType = "memory"
	PostgresRepo RepositoryType = "postgres"
)

// NewHistoryRepository picks the store named by history.store. db is nil for
// the memory store.
func NewHistoryRepository(cfg *config.Configuration, db *postgres.DB, sentry *sentry.Service, logger *logger.Logger) history.Repository {
	if RepositoryType(cfg.History.Store) == PostgresRepo && db != nil {
		return postgresRepo.NewHistoryRepository(db, sentry, logger)
	}
	return memory.NewHistoryStore()
}
