package visas

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

// MemoryRepository keeps visas in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Visa
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func clone(v models.Visa) models.Visa {
	v.RequiredDocuments = slices.Clone(v.RequiredDocuments)
	if v.RequiredDocuments == nil {
		v.RequiredDocuments = []string{}
	}
	return v
}

func (r *MemoryRepository) newestFirst(keep func(models.Visa) bool, limit int) []models.Visa {
	out := []models.Visa{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if keep(r.items[i]) {
			out = append(out, clone(r.items[i]))
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]models.Visa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(models.Visa) bool { return true }, limit), nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, email string) ([]models.Visa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestFirst(func(v models.Visa) bool { return v.AddedBy == email }, 0), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Visa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.items {
		if v.ID == id {
			c := clone(v)
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Create(_ context.Context, v *models.Visa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, clone(*v))
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, v *models.Visa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == v.ID {
			next := clone(*v)
			next.AddedBy = r.items[i].AddedBy
			next.AddedByName = r.items[i].AddedByName
			next.CreatedAt = r.items[i].CreatedAt
			r.items[i] = next
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = slices.DeleteFunc(r.items, func(v models.Visa) bool { return v.ID == id })
	if len(r.items) == n {
		return common.ErrorNotFound
	}
	return nil
}
