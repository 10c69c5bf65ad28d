// Package local is an in-process identity provider for development and
// tests. Accounts live in memory with bcrypt password hashes; ID tokens are
// HS256 JWTs signed with a secret shared with the backend's local auth mode.
package local

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/jwtx"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	minPasswordLen = 6
	tokenValidity  = time.Hour
)

// Config configures the provider. FederatedEmail is the account returned by
// SignInFederated; when empty the federated flow reports a closed popup.
type Config struct {
	Secret         []byte
	FederatedEmail string
	FederatedName  string
	FederatedPhoto string
	FailedAttempts int
	AttemptsRefill time.Duration
	BcryptCost     int
	RestoreDelay   time.Duration
}

type account struct {
	user *identity.User
	hash []byte
}

type Provider struct {
	cfg Config
	hub *identity.Hub

	mu       sync.Mutex
	accounts map[string]*account
	limiters map[string]*rate.Limiter
	current  *identity.User
	token    string
}

func New(cfg Config) *Provider {
	if cfg.FailedAttempts <= 0 {
		cfg.FailedAttempts = 5
	}
	if cfg.AttemptsRefill <= 0 {
		cfg.AttemptsRefill = time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		cfg:      cfg,
		hub:      identity.NewHub(),
		accounts: make(map[string]*account),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Start resolves the initial (signed-out) state after RestoreDelay, the way
// a real provider resolves a persisted session asynchronously.
func (p *Provider) Start(ctx context.Context) {
	if p.cfg.RestoreDelay <= 0 {
		p.hub.Publish(nil, identity.ReasonRestored)
		return
	}
	go func() {
		t := time.NewTimer(p.cfg.RestoreDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
		p.hub.Publish(nil, identity.ReasonRestored)
	}()
}

func (p *Provider) Current() (*identity.User, bool) {
	return p.hub.Current()
}

func (p *Provider) Observe(ctx context.Context) <-chan identity.Change {
	return p.hub.Observe(ctx)
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*identity.User, error) {
	email = common.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, identity.NewError(identity.CodeInvalidEmail, err)
	}
	if len(password) < minPasswordLen {
		return nil, identity.NewError(identity.CodeWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, identity.NewError(identity.CodeInternal, err)
	}

	p.mu.Lock()
	if _, ok := p.accounts[email]; ok {
		p.mu.Unlock()
		return nil, identity.NewError(identity.CodeEmailInUse, nil)
	}
	u := &identity.User{UID: uuid.NewString(), Email: email}
	p.accounts[email] = &account{user: u, hash: hash}
	p.mu.Unlock()

	return p.signIn(u)
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	email = common.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, identity.NewError(identity.CodeInvalidEmail, err)
	}

	p.mu.Lock()
	acc, ok := p.accounts[email]
	lim := p.limiter(email)
	p.mu.Unlock()

	if lim.Tokens() < 1 {
		return nil, identity.NewError(identity.CodeTooManyRequests, nil)
	}
	if !ok {
		lim.Allow()
		return nil, identity.NewError(identity.CodeUserNotFound, nil)
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		lim.Allow()
		return nil, identity.NewError(identity.CodeWrongPassword, nil)
	}

	return p.signIn(acc.user)
}

// limiter must be called with p.mu held.
func (p *Provider) limiter(email string) *rate.Limiter {
	lim, ok := p.limiters[email]
	if !ok {
		every := p.cfg.AttemptsRefill / time.Duration(p.cfg.FailedAttempts)
		lim = rate.NewLimiter(rate.Every(every), p.cfg.FailedAttempts)
		p.limiters[email] = lim
	}
	return lim
}

func (p *Provider) SignInFederated(ctx context.Context) (*identity.User, error) {
	if p.cfg.FederatedEmail == "" {
		return nil, identity.NewError(identity.CodePopupClosed, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, identity.NewError(identity.CodePopupCancelled, err)
	}

	email := common.NormalizeEmail(p.cfg.FederatedEmail)

	p.mu.Lock()
	acc, ok := p.accounts[email]
	if !ok {
		acc = &account{user: &identity.User{
			UID:         uuid.NewString(),
			Email:       email,
			DisplayName: p.cfg.FederatedName,
			PhotoURL:    p.cfg.FederatedPhoto,
		}}
		p.accounts[email] = acc
	}
	p.mu.Unlock()

	return p.signIn(acc.user)
}

func (p *Provider) signIn(u *identity.User) (*identity.User, error) {
	token, err := p.issue(u)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = u.Clone()
	p.token = token
	p.mu.Unlock()

	p.hub.Publish(u, identity.ReasonSignedIn)
	return u.Clone(), nil
}

func (p *Provider) issue(u *identity.User) (string, error) {
	token, err := jwtx.GenerateToken(u.UID, u.Email, u.DisplayName, u.PhotoURL, p.cfg.Secret, tokenValidity)
	if err != nil {
		return "", identity.NewError(identity.CodeInternal, err)
	}
	return token, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.token = ""
	p.mu.Unlock()

	p.hub.Publish(nil, identity.ReasonSignedOut)
	return nil
}

func (p *Provider) UpdateProfile(ctx context.Context, displayName, photoURL string) (*identity.User, error) {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return nil, identity.ErrNoSession
	}
	acc := p.accounts[p.current.Email]
	acc.user.DisplayName = strings.TrimSpace(displayName)
	acc.user.PhotoURL = strings.TrimSpace(photoURL)
	u := acc.user.Clone()
	p.current = u.Clone()
	p.mu.Unlock()

	token, err := p.issue(u)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.hub.Publish(u, identity.ReasonProfileUpdated)
	return u, nil
}

func (p *Provider) IDToken(ctx context.Context, force bool) (string, error) {
	p.mu.Lock()
	cur, token := p.current.Clone(), p.token
	p.mu.Unlock()

	if cur == nil {
		return "", identity.ErrNoSession
	}

	if !force {
		if _, err := jwtx.ParseToken(token, p.cfg.Secret); err == nil {
			return token, nil
		} else if !errors.Is(err, common.ErrTokenExpired) {
			return "", identity.NewError(identity.CodeTokenExpired, err)
		}
	}

	fresh, err := p.issue(cur)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.token = fresh
	p.mu.Unlock()
	return fresh, nil
}
