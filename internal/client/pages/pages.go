package pages

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

// Notifications shown after page actions.
const (
	MsgApplicationSubmitted = "Application submitted successfully!"
	MsgApplicationFailed    = "Failed to submit application. Please try again."
	MsgVisaAdded            = "Visa added successfully!"
	MsgVisaAddFailed        = "Failed to add visa. Please try again."
	MsgVisaUpdated          = "Visa updated successfully!"
	MsgVisaUpdateFailed     = "Failed to update visa. Please try again."
	MsgVisaDeleted          = "Visa deleted successfully!"
	MsgVisaDeleteFailed     = "Failed to delete visa. Please try again."
	MsgApplicationCancelled = "Application cancelled successfully!"
	MsgCancelFailed         = "Failed to cancel application. Please try again."
	MsgApplicationsFailed   = "Failed to fetch your applications"
)

const LatestLimit = 6

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrUnknownItem = errors.New("no such item on this page")
	ErrNotEditing  = errors.New("no edit in progress")
	ErrNotLoaded   = errors.New("page data not loaded")
	ErrBusy        = errors.New("another submission is in progress")
)

// SessionView is the read side of the session store.
type SessionView interface {
	Current() session.Session
}

// Deps are shared by every controller.
type Deps struct {
	API            client.Client
	Session        SessionView
	Cache          *ReadCache
	Policy         FallbackPolicy
	RequestTimeout time.Duration
	LatestTimeout  time.Duration
	Logger         logging.Logger
	Now            func() time.Time
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Discard()
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) identity() (*session.Identity, error) {
	if d.Session == nil {
		return nil, ErrNotSignedIn
	}
	id := d.Session.Current().Identity
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return id, nil
}

// write bounds a mutation by the request timeout.
func (d Deps) write(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(wctx)
}

func newLoader[T any](d Deps, key string, timeout time.Duration, sample func() (T, bool), fetch func(ctx context.Context) (T, error)) *Loader[T] {
	if timeout <= 0 {
		timeout = d.RequestTimeout
	}
	return NewLoader(LoaderConfig[T]{
		Key:     key,
		Timeout: timeout,
		Policy:  d.Policy,
		Cache:   d.Cache,
		Sample:  sample,
		Logger:  d.logger(),
	}, fetch)
}

// Mode is the sub-state of pages with an edit form.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
	ModeSubmitting
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeSubmitting:
		return "submitting"
	}
	return "viewing"
}
