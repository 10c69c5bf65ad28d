package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/guard"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
	"github.com/dmitrijs2005/borderease/internal/client/services"
	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/dmitrijs2005/borderease/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Sessions is what the CLI needs from the session store.
type Sessions interface {
	Current() session.Session
	Subscribe() (<-chan session.Session, func())
	SignUp(ctx context.Context, email, password, displayName, photoURL string) (session.Identity, error)
	SignIn(ctx context.Context, email, password string) (session.Identity, error)
	SignInFederated(ctx context.Context) (session.Identity, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, displayName, photoURL string) error
}

// page is an open page controller; Close discards its pending loads.
type page interface {
	Close()
}

type App struct {
	sessions Sessions
	api      client.Client
	deps     pages.Deps
	theme    *services.ThemeService
	offline  *services.OfflineService
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// GuardWait bounds how long a protected page waits for the session.
	GuardWait     time.Duration
	CheckInterval time.Duration

	mu       sync.Mutex
	mode     Mode
	location string
	returnTo string
	current  page
	details  *pages.Details
	myVisas  *pages.MyVisas
	myApps   *pages.MyApplications
	listing  *pages.Listing
}

// Components are the collaborators of an App.
type Components struct {
	Sessions Sessions
	API      client.Client
	Deps     pages.Deps
	Theme    *services.ThemeService
	Offline  *services.OfflineService
	Logger   logging.Logger
	In       io.Reader
	Out      io.Writer
}

func NewApp(c Components) *App {
	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		sessions:      c.Sessions,
		api:           c.API,
		deps:          c.Deps,
		theme:         c.Theme,
		offline:       c.Offline,
		logger:        logger,
		reader:        bufio.NewReader(c.In),
		out:           c.Out,
		GuardWait:     10 * time.Second,
		CheckInterval: 3 * time.Second,
		location:      "/",
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().Identity != nil
}

// Run starts the online watcher and blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.closePage()

	if a.offline != nil {
		a.offline.Prune(ctx)
		go a.StartOnlineStatusWatcher(ctx, a.CheckInterval)
	}

	a.printf("Welcome to BorderEase (type 'help' for commands)\n")
	_ = a.Home(ctx, nil)
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// status is shown in the prompt: the signed-in email, "guest", or "..."
// while the session is resolving, followed by the connectivity mode.
func (a *App) status() string {
	s := a.sessions.Current()
	who := "guest"
	switch {
	case s.Loading:
		who = "..."
	case s.Identity != nil:
		who = s.Identity.Email
	}
	if m := a.Mode(); m != ModeUnknown {
		return who + " " + string(m)
	}
	return who
}

// StartOnlineStatusWatcher probes the API every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.offline.Ping(pctx)
		cancel()
		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}
	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probe()
		case <-ctx.Done():
			return
		}
	}
}

// open makes p the current page, closing the previous one.
func (a *App) open(location string, p page) {
	a.mu.Lock()
	prev := a.current
	a.current = p
	a.location = location
	a.details, a.myVisas, a.myApps, a.listing = nil, nil, nil, nil
	switch v := p.(type) {
	case *pages.Details:
		a.details = v
	case *pages.MyVisas:
		a.myVisas = v
	case *pages.MyApplications:
		a.myApps = v
	case *pages.Listing:
		a.listing = v
	}
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func (a *App) closePage() {
	a.open(a.Location(), nil)
}

// enter runs the guard for location. It returns false when the page must
// not be shown; in that case the user has been sent to the login page.
func (a *App) enter(ctx context.Context, location string) bool {
	d := guard.Decide(a.sessions.Current(), location)
	if d.Outcome == guard.Pending {
		a.printf("Loading...\n")
		snap, ok := a.awaitResolved(ctx)
		if !ok {
			a.failure("Still checking your session. Please try again.")
			return false
		}
		d = guard.Decide(snap, location)
	}

	switch d.Outcome {
	case guard.Redirect:
		a.mu.Lock()
		a.returnTo = d.From
		a.mu.Unlock()
		a.open(d.To, nil)
		a.printf("Please sign in to continue: use 'login', 'google' or 'register'.\n")
		return false
	case guard.Allow:
		return true
	}
	return false
}

func (a *App) awaitResolved(ctx context.Context) (session.Session, bool) {
	ch, cancel := a.sessions.Subscribe()
	defer cancel()

	timer := time.NewTimer(a.GuardWait)
	defer timer.Stop()

	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return session.Session{}, false
			}
			if !s.Loading {
				return s, true
			}
		case <-timer.C:
			return session.Session{}, false
		case <-ctx.Done():
			return session.Session{}, false
		}
	}
}

// afterSignIn goes back to the page that asked for a sign-in.
func (a *App) afterSignIn(ctx context.Context) {
	a.mu.Lock()
	from := a.returnTo
	a.returnTo = ""
	a.mu.Unlock()

	_ = a.Navigate(ctx, guard.ReturnTo(from))
}
