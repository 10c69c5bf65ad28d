package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/models"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
)

type UserService struct {
	base
}

func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, opts ...Option) *UserService {
	return &UserService{base: newBase(db, rm, opts)}
}

// Save upserts the profile of p. It runs after sign-up and every federated
// sign-in, so an existing record keeps its creation time.
func (s *UserService) Save(ctx context.Context, p *auth.Principal, u models.User) (*models.User, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if u.Email != "" && !owns(p, u.Email) {
		return nil, forbidden("user")
	}

	u.Email = p.Email
	u.DisplayName = s.clean(u.DisplayName)
	if err := s.checkPhoto(u.PhotoURL); err != nil {
		return nil, err
	}
	now := s.timestamp()
	if u.CreatedAt == "" {
		u.CreatedAt = now
	}
	if u.LastLoginAt == "" {
		u.LastLoginAt = now
	}

	if err := s.rm.Users(s.handle()).Upsert(ctx, &u); err != nil {
		return nil, err
	}
	return s.rm.Users(s.handle()).Get(ctx, u.Email)
}

func (s *UserService) Get(ctx context.Context, p *auth.Principal, email string) (*models.User, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !owns(p, email) {
		return nil, forbidden("user")
	}
	return s.rm.Users(s.handle()).Get(ctx, p.Email)
}

func (s *UserService) Update(ctx context.Context, p *auth.Principal, email string, patch models.UserPatch) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !owns(p, email) {
		return forbidden("user")
	}
	if patch.Empty() {
		return &ValidationError{Fields: map[string]string{"body": "nothing to update"}}
	}
	if patch.DisplayName != nil {
		name := s.clean(*patch.DisplayName)
		patch.DisplayName = &name
	}
	if patch.PhotoURL != nil {
		if err := s.checkPhoto(*patch.PhotoURL); err != nil {
			return err
		}
	}
	return s.rm.Users(s.handle()).Update(ctx, p.Email, patch)
}

func (s *UserService) checkPhoto(u string) error {
	if u != "" && !isHTTPURL(u) {
		return &ValidationError{Fields: map[string]string{"photoURL": "must be an http(s) URL"}}
	}
	return nil
}
