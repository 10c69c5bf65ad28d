package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/repositories/cache"
	"github.com/dmitrijs2005/borderease/internal/common"
)

// ReadCache keeps the last good response of each read as JSON.
type ReadCache struct {
	repo cache.Repository
	now  func() time.Time
}

func NewReadCache(repo cache.Repository) *ReadCache {
	return &ReadCache{repo: repo, now: time.Now}
}

func (c *ReadCache) Remember(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.repo.Put(ctx, key, b, c.now())
}

// Recall decodes the entry for key into v and returns when it was stored.
// A missing entry yields client.ErrLocalDataNotAvailable.
func (c *ReadCache) Recall(ctx context.Context, key string, v any) (time.Time, error) {
	e, err := c.repo.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return time.Time{}, client.ErrLocalDataNotAvailable
	}
	if err != nil {
		return time.Time{}, err
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return e.UpdatedAt, nil
}

// Forget drops every entry under prefix, e.g. a signed-out user's lists.
func (c *ReadCache) Forget(ctx context.Context, prefix string) error {
	_, err := c.repo.DeletePrefix(ctx, prefix)
	return err
}

// Prune drops entries older than maxAge.
func (c *ReadCache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	return c.repo.PruneOlderThan(ctx, c.now().Add(-maxAge))
}

// cache keys
func keyLatest() string               { return "visas:latest" }
func keyAllVisas() string             { return "visas:all" }
func keyVisa(id string) string        { return "visas:id:" + id }
func keyOwnVisas(email string) string { return "user:" + email + ":visas" }
func keyApplications(email string) string {
	return "user:" + email + ":applications"
}

// UserPrefix is the cache prefix of everything stored for email.
func UserPrefix(email string) string { return "user:" + email + ":" }
