package repomanager

import (
	"context"

	"github.com/s-fanou/feed/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. Data is lost on
// restart; intended for local runs and tests.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
