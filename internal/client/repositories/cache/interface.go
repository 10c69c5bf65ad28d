package cache

import (
	"context"
	"time"
)

// Entry is one cached payload.
type Entry struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

type Repository interface {
	Put(ctx context.Context, key string, payload []byte, at time.Time) error
	// Get returns common.ErrorNotFound when key has never been stored.
	Get(ctx context.Context, key string) (*Entry, error)
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
