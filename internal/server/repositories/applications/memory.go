package applications

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Application
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) ListByApplicant(_ context.Context, email string) ([]models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Application{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].ApplicantEmail == email {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *a)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = slices.DeleteFunc(r.items, func(a models.Application) bool { return a.ID == id })
	if len(r.items) == n {
		return common.ErrorNotFound
	}
	return nil
}
