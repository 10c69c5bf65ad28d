package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: map[string]models.User{}}
}

func (r *MemoryRepository) Get(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := *u
	if prev, ok := r.users[u.Email]; ok {
		next.CreatedAt = prev.CreatedAt
	}
	r.users[u.Email] = next
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, email string, patch models.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return common.ErrorNotFound
	}
	r.users[email] = patch.Apply(u)
	return nil
}
