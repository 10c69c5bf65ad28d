// Package visas stores visa offerings.
package visas

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/server/models"
)

// Repository lists are newest first. Missing ids yield common.ErrorNotFound.
type Repository interface {
	// List returns at most limit visas; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.Visa, error)
	Get(ctx context.Context, id string) (*models.Visa, error)
	ListByOwner(ctx context.Context, email string) ([]models.Visa, error)
	Create(ctx context.Context, v *models.Visa) error
	Update(ctx context.Context, v *models.Visa) error
	Delete(ctx context.Context, id string) error
}
