// Package pages holds the per-page controllers of the client. A controller
// owns its page state; reads go through a Loader, writes follow the
// TrustOnSuccess policy.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Source tells where loaded data came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceCache
	SourceSample
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	case SourceSample:
		return "sample"
	}
	return "none"
}

// FallbackPolicy selects what a read shows when the API is unreachable.
type FallbackPolicy string

const (
	FallbackCache  FallbackPolicy = "cache"
	FallbackNone   FallbackPolicy = "none"
	FallbackSample FallbackPolicy = "sample"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FallbackCache, nil
	case FallbackCache, FallbackNone, FallbackSample:
		return p, nil
	}
	return "", fmt.Errorf("unknown fallback policy %q", s)
}

// ErrDiscarded is returned by Load when its result arrived after Close or
// after a newer Load and was thrown away.
var ErrDiscarded = errors.New("result discarded")

// State is a snapshot of a loader. Err keeps the remote failure even when a
// fallback produced data.
type State[T any] struct {
	Status   Status
	Data     T
	Source   Source
	Err      error
	CachedAt time.Time
}

type LoaderConfig[T any] struct {
	// Key identifies the read in the local cache.
	Key     string
	Timeout time.Duration
	Policy  FallbackPolicy
	Cache   *ReadCache
	// Sample supplies built-in data for FallbackSample.
	Sample func() (T, bool)
	Logger logging.Logger
}

// Loader runs one read at a time for a page: idle, loading, then loaded or
// failed. The fallback is consulted at most once per Load.
type Loader[T any] struct {
	cfg   LoaderConfig[T]
	fetch func(ctx context.Context) (T, error)

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	closed bool
	cancel context.CancelFunc
}

func NewLoader[T any](cfg LoaderConfig[T], fetch func(ctx context.Context) (T, error)) *Loader[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Policy == "" {
		cfg.Policy = FallbackCache
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Loader[T]{cfg: cfg, fetch: fetch}
}

func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load fetches under the configured timeout and returns the resulting
// state. A Load started while another is running supersedes it.
func (l *Loader[T]) Load(ctx context.Context) (State[T], error) {
	l.mu.Lock()
	if l.closed {
		st := l.state
		l.mu.Unlock()
		return st, ErrDiscarded
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	fctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	l.cancel = cancel
	l.state.Status = StatusLoading
	l.mu.Unlock()
	defer cancel()

	next := l.resolve(fctx, ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.gen {
		l.cfg.Logger.Debug(ctx, "discarding load result", "key", l.cfg.Key)
		return l.state, ErrDiscarded
	}
	l.cancel = nil
	l.state = next
	return next, nil
}

func (l *Loader[T]) resolve(fctx, ctx context.Context) State[T] {
	data, err := l.fetch(fctx)
	if err == nil {
		if l.cfg.Cache != nil && l.cfg.Key != "" {
			if cerr := l.cfg.Cache.Remember(ctx, l.cfg.Key, data); cerr != nil {
				l.cfg.Logger.Warn(ctx, "cache write failed", "key", l.cfg.Key, "error", cerr)
			}
		}
		return State[T]{Status: StatusLoaded, Data: data, Source: SourceRemote}
	}

	var zero T
	failed := State[T]{Status: StatusFailed, Data: zero, Err: err}
	if !unreachable(err) {
		return failed
	}

	l.cfg.Logger.Info(ctx, "api unreachable, applying fallback", "key", l.cfg.Key, "policy", l.cfg.Policy, "error", err)
	switch l.cfg.Policy {
	case FallbackCache:
		if l.cfg.Cache == nil || l.cfg.Key == "" {
			return failed
		}
		var cached T
		at, cerr := l.cfg.Cache.Recall(ctx, l.cfg.Key, &cached)
		if cerr != nil {
			if !errors.Is(cerr, client.ErrLocalDataNotAvailable) {
				l.cfg.Logger.Warn(ctx, "cache read failed", "key", l.cfg.Key, "error", cerr)
			}
			return failed
		}
		return State[T]{Status: StatusLoaded, Data: cached, Source: SourceCache, Err: err, CachedAt: at}
	case FallbackSample:
		if l.cfg.Sample == nil {
			return failed
		}
		if sample, ok := l.cfg.Sample(); ok {
			return State[T]{Status: StatusLoaded, Data: sample, Source: SourceSample, Err: err}
		}
	}
	return failed
}

// Mutate replaces the loaded data. It is how controllers apply a write
// that the API has already accepted.
func (l *Loader[T]) Mutate(fn func(T) T) State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.state.Data = fn(l.state.Data)
	}
	return l.state
}

// Commit is Mutate for writes that also change what a later offline Load
// should see: the new data replaces the cached entry under the loader key.
func (l *Loader[T]) Commit(ctx context.Context, fn func(T) T) State[T] {
	st := l.Mutate(fn)
	if l.cfg.Cache == nil || l.cfg.Key == "" || st.Status != StatusLoaded {
		return st
	}
	if err := l.cfg.Cache.Remember(ctx, l.cfg.Key, st.Data); err != nil {
		l.cfg.Logger.Warn(ctx, "cache write failed, dropping entry", "key", l.cfg.Key, "error", err)
		if ferr := l.cfg.Cache.Forget(ctx, l.cfg.Key); ferr != nil {
			l.cfg.Logger.Warn(ctx, "cache invalidation failed", "key", l.cfg.Key, "error", ferr)
		}
	}
	return st
}

// Close cancels an in-flight load; later results are discarded.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func unreachable(err error) bool {
	return client.IsUnavailable(err) || errors.Is(err, context.DeadlineExceeded)
}
