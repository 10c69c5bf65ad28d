// Package users stores user profiles keyed by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, email string) (*models.User, error)
	// Upsert inserts u or refreshes the profile fields of an existing
	// record. CreatedAt of an existing record is kept.
	Upsert(ctx context.Context, u *models.User) error
	// Update applies patch; a missing user yields common.ErrorNotFound.
	Update(ctx context.Context, email string, patch models.UserPatch) error
}
