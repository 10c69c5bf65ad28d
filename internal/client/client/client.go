package client

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error

	// ListVisas returns visas; limit <= 0 means no limit.
	ListVisas(ctx context.Context, limit int) ([]models.Visa, error)
	GetVisa(ctx context.Context, id string) (*models.Visa, error)
	ListVisasByOwner(ctx context.Context, email string) ([]models.Visa, error)
	CreateVisa(ctx context.Context, v models.Visa) (*models.Visa, error)
	UpdateVisa(ctx context.Context, v models.Visa) error
	DeleteVisa(ctx context.Context, id string) error

	ListApplications(ctx context.Context, email string) ([]models.Application, error)
	CreateApplication(ctx context.Context, a models.Application) (*models.Application, error)
	DeleteApplication(ctx context.Context, id string) error

	SaveUser(ctx context.Context, u models.UserRecord) error
	UpdateUser(ctx context.Context, email string, patch models.UserPatch) error
}

// TokenSource supplies identity tokens for outbound requests. IDToken
// returns "" with a nil error when nobody is signed in.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
	RefreshIDToken(ctx context.Context) (string, error)
}
