// Package session owns the process-wide authentication state.
//
// A Store holds one Session. Only its writer goroutine assigns the identity:
// provider changes and action results both travel to it as events. Provider
// changes are authoritative and applied in arrival order. Action results
// are applied optimistically so a caller sees its own sign-in as soon as the
// call returns; each action takes a ticket when it starts and a result whose
// ticket is older than the last applied one is dropped.
//
// Readers take snapshots with Current or follow changes with Subscribe.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

// Identity is the signed-in user as the rest of the client sees it.
type Identity struct {
	Email       string
	DisplayName string
	PhotoURL    string
}

// Session is a read-only snapshot. Loading stays true until the provider
// reports its initial state.
type Session struct {
	Identity *Identity
	Loading  bool
	Version  uint64
}

// Email returns the signed-in email or "".
func (s Session) Email() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Email
}

// UserDirectory mirrors identities on the backend.
type UserDirectory interface {
	SaveUser(ctx context.Context, u models.UserRecord) error
	UpdateUser(ctx context.Context, email string, patch models.UserPatch) error
}

var ErrNotRunning = errors.New("session store is not running")

type event struct {
	ticket  uint64
	applied chan struct{}
}

type subscriber struct {
	ch   chan Session
	once sync.Once
}

type Store struct {
	provider identity.Provider
	users    UserDirectory
	logger   logging.Logger
	now      func() time.Time

	// BackgroundTimeout bounds fire-and-forget backend writes.
	BackgroundTimeout time.Duration

	tickets atomic.Uint64
	events  chan event

	mu    sync.RWMutex
	state Session
	subs  map[*subscriber]struct{}

	initOnce    sync.Once
	disposeOnce sync.Once
	running     atomic.Bool
	cancel      context.CancelFunc
	done        chan struct{}

	bgMu       sync.Mutex
	disposed   bool
	background sync.WaitGroup
}

func NewStore(p identity.Provider, users UserDirectory, logger logging.Logger) *Store {
	return &Store{
		provider:          p,
		users:             users,
		logger:            logger,
		now:               time.Now,
		BackgroundTimeout: 10 * time.Second,
		events:            make(chan event),
		state:             Session{Loading: true},
		subs:              make(map[*subscriber]struct{}),
		done:              make(chan struct{}),
	}
}

// Init installs the provider subscription and starts the writer. Calling it
// more than once has no effect.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		changes := s.provider.Observe(ctx)
		s.running.Store(true)
		go s.run(ctx, changes)
	})
}

// Dispose cancels the provider subscription, stops the writer, waits for
// background writes and closes every subscription.
func (s *Store) Dispose() {
	s.disposeOnce.Do(func() {
		if s.running.Swap(false) {
			s.cancel()
			<-s.done
		}

		s.bgMu.Lock()
		s.disposed = true
		s.bgMu.Unlock()
		s.background.Wait()

		s.mu.Lock()
		for sub := range s.subs {
			delete(s.subs, sub)
			sub.once.Do(func() { close(sub.ch) })
		}
		s.mu.Unlock()
	})
}

func (s *Store) run(ctx context.Context, changes <-chan identity.Change) {
	defer close(s.done)

	var lastTicket uint64
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.logger.Debug(ctx, "identity change", "reason", c.Reason, "signed_in", c.User != nil)
			s.apply(identityOf(c.User), false)
		case ev := <-s.events:
			if ev.ticket < lastTicket {
				s.logger.Debug(ctx, "stale action result dropped", "ticket", ev.ticket, "last", lastTicket)
				close(ev.applied)
				continue
			}
			lastTicket = ev.ticket
			if u, resolved := s.provider.Current(); resolved {
				s.apply(identityOf(u), s.Current().Loading)
			}
			close(ev.applied)
		}
	}
}

// apply is only called from the writer goroutine.
func (s *Store) apply(id *Identity, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Session{Identity: id, Loading: loading, Version: s.state.Version + 1}
	snap := s.snapshotLocked()
	for sub := range s.subs {
		// keep only the latest value for slow readers
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func (s *Store) snapshotLocked() Session {
	snap := s.state
	if snap.Identity != nil {
		c := *snap.Identity
		snap.Identity = &c
	}
	return snap
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot,
// starting with the current one, and a func that ends the subscription.
func (s *Store) Subscribe() (<-chan Session, func()) {
	sub := &subscriber{ch: make(chan Session, 1)}

	s.mu.Lock()
	sub.ch <- s.snapshotLocked()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}
	return sub.ch, cancel
}

func (s *Store) begin() uint64 {
	return s.tickets.Add(1)
}

// commit hands an action result to the writer and waits until it has been
// applied or dropped.
func (s *Store) commit(ctx context.Context, ticket uint64) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	ev := event{ticket: ticket, applied: make(chan struct{})}
	select {
	case s.events <- ev:
	case <-s.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ev.applied:
		return nil
	case <-s.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// afterCommit logs a failed commit; the provider feed still converges.
func (s *Store) afterCommit(ctx context.Context, op string, err error) {
	if err != nil {
		s.logger.Warn(ctx, "action result not applied", "op", op, "error", err)
	}
}

func (s *Store) SignUp(ctx context.Context, email, password, displayName, photoURL string) (Identity, error) {
	t := s.begin()

	if _, err := s.provider.CreateAccount(ctx, email, password); err != nil {
		return Identity{}, toAuthError(err)
	}
	u, err := s.provider.UpdateProfile(ctx, displayName, photoURL)
	if err != nil {
		return Identity{}, toAuthError(err)
	}
	s.afterCommit(ctx, "sign-up", s.commit(ctx, t))

	now := s.timestamp()
	rec := models.UserRecord{
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.users.SaveUser(ctx, rec); err != nil {
		s.logger.Warn(ctx, "failed to save user record", "email", u.Email, "error", err)
	}

	return *identityOf(u), nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (Identity, error) {
	t := s.begin()

	u, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return Identity{}, toAuthError(err)
	}
	s.afterCommit(ctx, "sign-in", s.commit(ctx, t))

	at := s.timestamp()
	s.inBackground(ctx, "update last login", func(ctx context.Context) error {
		return s.users.UpdateUser(ctx, u.Email, models.UserPatch{LastLoginAt: &at})
	})

	return *identityOf(u), nil
}

func (s *Store) SignInFederated(ctx context.Context) (Identity, error) {
	t := s.begin()

	u, err := s.provider.SignInFederated(ctx)
	if err != nil {
		return Identity{}, toAuthError(err)
	}
	s.afterCommit(ctx, "federated sign-in", s.commit(ctx, t))

	now := s.timestamp()
	rec := models.UserRecord{
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.users.SaveUser(ctx, rec); err != nil {
		s.logger.Warn(ctx, "failed to upsert user record", "email", u.Email, "error", err)
	}

	return *identityOf(u), nil
}

func (s *Store) SignOut(ctx context.Context) error {
	t := s.begin()

	if err := s.provider.SignOut(ctx); err != nil {
		return toAuthError(err)
	}
	s.afterCommit(ctx, "sign-out", s.commit(ctx, t))
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, displayName, photoURL string) error {
	t := s.begin()

	u, err := s.provider.UpdateProfile(ctx, displayName, photoURL)
	if err != nil {
		return toAuthError(err)
	}
	s.afterCommit(ctx, "update profile", s.commit(ctx, t))

	name, photo := u.DisplayName, u.PhotoURL
	s.inBackground(ctx, "mirror profile", func(ctx context.Context) error {
		return s.users.UpdateUser(ctx, u.Email, models.UserPatch{DisplayName: &name, PhotoURL: &photo})
	})
	return nil
}

// IDToken implements the gateway's token source. It returns "" when signed
// out.
func (s *Store) IDToken(ctx context.Context) (string, error) {
	tok, err := s.provider.IDToken(ctx, false)
	if errors.Is(err, identity.ErrNoSession) {
		return "", nil
	}
	return tok, err
}

func (s *Store) RefreshIDToken(ctx context.Context) (string, error) {
	tok, err := s.provider.IDToken(ctx, true)
	if errors.Is(err, identity.ErrNoSession) {
		return "", nil
	}
	return tok, err
}

// inBackground runs a best-effort backend write detached from the caller.
// Failures are logged and never surfaced. Nothing starts once the store
// is disposed.
func (s *Store) inBackground(ctx context.Context, op string, fn func(context.Context) error) {
	s.bgMu.Lock()
	defer s.bgMu.Unlock()
	if s.disposed {
		s.logger.Warn(ctx, "background write skipped, session store disposed", "op", op)
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.BackgroundTimeout)
		defer cancel()
		if err := fn(bctx); err != nil {
			s.logger.Warn(bctx, "background write failed", "op", op, "error", err)
		}
	}()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func identityOf(u *identity.User) *Identity {
	if u == nil {
		return nil
	}
	return &Identity{Email: u.Email, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}
