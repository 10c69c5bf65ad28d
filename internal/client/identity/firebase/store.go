package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
)

// SessionKey is the preference key holding the persisted session.
const SessionKey = "identity.firebase.session"

// Store persists the refresh token between runs. preferences.Repository
// satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type session struct {
	user         identity.User
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

type persisted struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoURL"`
	RefreshToken string `json:"refreshToken"`
}

func (p *Provider) save(ctx context.Context, s *session) {
	b, err := json.Marshal(persisted{
		UID:          s.user.UID,
		Email:        s.user.Email,
		DisplayName:  s.user.DisplayName,
		PhotoURL:     s.user.PhotoURL,
		RefreshToken: s.refreshToken,
	})
	if err == nil {
		err = p.store.Set(ctx, SessionKey, b)
	}
	if err != nil {
		p.logger.Warn(ctx, "failed to persist identity session", "error", err)
	}
}

func (p *Provider) load(ctx context.Context) (*session, error) {
	b, err := p.store.Get(ctx, SessionKey)
	if err != nil || b == nil {
		return nil, err
	}

	var ps persisted
	if err := json.Unmarshal(b, &ps); err != nil {
		return nil, fmt.Errorf("decode persisted session: %w", err)
	}
	if ps.RefreshToken == "" || ps.Email == "" {
		return nil, nil
	}

	return &session{
		user: identity.User{
			UID:         ps.UID,
			Email:       ps.Email,
			DisplayName: ps.DisplayName,
			PhotoURL:    ps.PhotoURL,
		},
		refreshToken: ps.RefreshToken,
	}, nil
}

func (p *Provider) forget(ctx context.Context) {
	if err := p.store.Delete(ctx, SessionKey); err != nil {
		p.logger.Warn(ctx, "failed to delete persisted identity session", "error", err)
	}
}
