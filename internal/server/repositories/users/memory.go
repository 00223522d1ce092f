package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/s-fanou/feed/internal/common"
	"github.com/s-fanou/feed/internal/server/models"
)

// MemoryRepository keeps users in process memory. It enforces email
// uniqueness under its lock, so concurrent creates for one email let exactly
// one through.
type MemoryRepository struct {
	mu        sync.RWMutex
	byID      map[string]models.User
	idByEmail map[string]string
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:      make(map[string]models.User),
		idByEmail: make(map[string]string),
		now:       time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.idByEmail[user.Email]; taken {
		return nil, fmt.Errorf("email taken: %w", common.ErrorAlreadyExists)
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now().UTC()

	r.byID[user.ID] = *user
	r.idByEmail[user.Email] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// Len reports the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
