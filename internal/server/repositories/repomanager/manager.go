// Package repomanager selects and owns the storage backend for the server,
// vending repositories and running backend-specific schema setup.
package repomanager

import (
	"context"
	"fmt"

	"github.com/s-fanou/feed/internal/server/config"
	"github.com/s-fanou/feed/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close(ctx context.Context) error
}

// New builds the manager named by cfg.StoreKind. Nothing is migrated here;
// callers run RunMigrations once the manager is constructed.
func New(cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StoreKind {
	case config.StorePostgres:
		return NewPostgresRepositoryManager(cfg.DatabaseDSN)
	case config.StoreMongo:
		return NewMongoRepositoryManager(cfg.MongoURI, cfg.MongoDatabase)
	case config.StoreMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.StoreKind)
	}
}
