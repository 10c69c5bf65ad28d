// Package applications stores submitted visa applications.
package applications

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/server/models"
)

// Repository lists are newest first. Missing ids yield common.ErrorNotFound.
type Repository interface {
	ListByApplicant(ctx context.Context, email string) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	Create(ctx context.Context, a *models.Application) error
	Delete(ctx context.Context, id string) error
}
