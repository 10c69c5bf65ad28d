package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

// OfflineService answers reachability probes and keeps the local read
// cache tidy.
type OfflineService struct {
	api    client.Client
	cache  *pages.ReadCache
	maxAge time.Duration
	logger logging.Logger
}

func NewOfflineService(api client.Client, cache *pages.ReadCache, maxAge time.Duration, logger logging.Logger) *OfflineService {
	return &OfflineService{api: api, cache: cache, maxAge: maxAge, logger: logger}
}

func (s *OfflineService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// ClearUserData drops cached lists that belong to email.
func (s *OfflineService) ClearUserData(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}
	return s.cache.Forget(ctx, pages.UserPrefix(email))
}

// Prune removes cache entries older than the configured age.
func (s *OfflineService) Prune(ctx context.Context) {
	if s.maxAge <= 0 {
		return
	}
	n, err := s.cache.Prune(ctx, s.maxAge)
	if err != nil {
		s.logger.Warn(ctx, "cache prune failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug(ctx, "cache pruned", "entries", n)
	}
}
