// Package firebase implements identity.Provider on Google Identity Toolkit
// (the REST API behind Firebase Authentication).
//
// Password accounts use signupNewUser, verifyPassword and setAccountInfo.
// Google sign-in uses createAuthUri and verifyAssertion with a loopback
// redirect served on 127.0.0.1. ID tokens are refreshed through the Secure
// Token endpoint, and the refresh token is persisted so a restarted client
// resumes the session.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const tokenSkew = time.Minute

type Config struct {
	APIKey string
	// Endpoint overrides the Identity Toolkit base URL.
	Endpoint       string
	SecureTokenURL string
	// FederatedProvider is the IdP id used for federated sign-in.
	FederatedProvider string
	FederatedTimeout  time.Duration
	// Opener presents the IdP sign-in URL to the user.
	Opener     func(ctx context.Context, url string) error
	HTTPClient *http.Client
}

type Provider struct {
	cfg    Config
	svc    *identitytoolkit.Service
	http   *http.Client
	store  Store
	hub    *identity.Hub
	logger logging.Logger
	now    func() time.Time

	// tmu serialises identity transitions so the commit, the persisted
	// copy and the published change always agree.
	tmu sync.Mutex

	mu      sync.Mutex
	current *session
	// gen counts sign-ins, profile updates and sign-outs.
	gen uint64
}

func New(ctx context.Context, cfg Config, store Store, logger logging.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("firebase: api key is required")
	}
	if cfg.SecureTokenURL == "" {
		cfg.SecureTokenURL = DefaultSecureTokenURL
	}
	if cfg.FederatedProvider == "" {
		cfg.FederatedProvider = "google.com"
	}
	if cfg.FederatedTimeout <= 0 {
		cfg.FederatedTimeout = 2 * time.Minute
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Opener == nil {
		return nil, errors.New("firebase: opener is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: identity toolkit: %w", err)
	}

	return &Provider{
		cfg:    cfg,
		svc:    svc,
		http:   cfg.HTTPClient,
		store:  store,
		hub:    identity.NewHub(),
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start restores a persisted session in the background. Observers see the
// first state once restoration finishes.
func (p *Provider) Start(ctx context.Context) {
	go p.restore(ctx)
}

func (p *Provider) restore(ctx context.Context) {
	gen := p.generation()

	s, err := p.load(ctx)
	if err != nil {
		p.logger.Warn(ctx, "failed to load persisted identity session", "error", err)
	}
	if s == nil {
		p.finishRestore(ctx, gen, nil, false)
		return
	}

	tr, err := p.exchangeRefreshToken(ctx, s.refreshToken)
	switch {
	case err == nil:
		s.idToken = tr.IDToken
		s.refreshToken = tr.RefreshToken
		s.expiresAt = expiry(p.now(), tr.ExpiresIn)
	case identity.CodeOf(err) == identity.CodeNetworkFailed:
		// offline: keep the account, the token is refreshed on first use
		p.logger.Warn(ctx, "session restored without fresh token", "error", err)
	default:
		p.logger.Info(ctx, "persisted session rejected", "error", err)
		p.finishRestore(ctx, gen, nil, true)
		return
	}
	p.finishRestore(ctx, gen, s, err == nil)
}

// finishRestore commits the restored session s (nil for none) unless the
// identity changed since gen. With persist set, s is saved, or the stored
// session is removed when s is nil.
func (p *Provider) finishRestore(ctx context.Context, gen uint64, s *session, persist bool) {
	p.tmu.Lock()
	defer p.tmu.Unlock()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		p.logger.Info(ctx, "discarding session restore superseded by a newer sign-in or sign-out")
		return
	}
	p.current = s
	p.mu.Unlock()

	var u *identity.User
	if s != nil {
		u = &s.user
	}
	if persist {
		if s != nil {
			p.save(ctx, s)
		} else {
			p.forget(ctx)
		}
	}
	p.hub.Publish(u, identity.ReasonRestored)
}

func (p *Provider) generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

func (p *Provider) Current() (*identity.User, bool) {
	return p.hub.Current()
}

func (p *Provider) Observe(ctx context.Context) <-chan identity.Change {
	return p.hub.Observe(ctx)
}

// establish makes s the current session, persists it and notifies observers.
func (p *Provider) establish(ctx context.Context, s *session, reason identity.ChangeReason) *identity.User {
	p.tmu.Lock()
	defer p.tmu.Unlock()

	p.mu.Lock()
	p.current = s
	p.gen++
	p.mu.Unlock()

	p.save(ctx, s)
	p.hub.Publish(&s.user, reason)
	return s.user.Clone()
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*identity.User, error) {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	s := &session{
		user:         identity.User{UID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName},
		idToken:      resp.IdToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    expiry(p.now(), strconv.FormatInt(resp.ExpiresIn, 10)),
	}
	return p.establish(ctx, s, identity.ReasonSignedIn), nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	s := &session{
		user: identity.User{
			UID:         resp.LocalId,
			Email:       resp.Email,
			DisplayName: resp.DisplayName,
			PhotoURL:    resp.PhotoUrl,
		},
		idToken:      resp.IdToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    expiry(p.now(), strconv.FormatInt(resp.ExpiresIn, 10)),
	}
	return p.establish(ctx, s, identity.ReasonSignedIn), nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.tmu.Lock()
	defer p.tmu.Unlock()
	p.clear(ctx)
	return nil
}

// clear drops the current session; tmu must be held.
func (p *Provider) clear(ctx context.Context) {
	p.mu.Lock()
	p.current = nil
	p.gen++
	p.mu.Unlock()

	p.forget(ctx)
	p.hub.Publish(nil, identity.ReasonSignedOut)
}

func (p *Provider) UpdateProfile(ctx context.Context, displayName, photoURL string) (*identity.User, error) {
	token, err := p.IDToken(ctx, false)
	if err != nil {
		return nil, err
	}

	req := &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:           token,
		DisplayName:       displayName,
		PhotoUrl:          photoURL,
		ReturnSecureToken: true,
	}
	if photoURL == "" {
		req.DeleteAttribute = []string{"PHOTO_URL"}
	}

	resp, err := p.svc.Relyingparty.SetAccountInfo(req).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return nil, identity.ErrNoSession
	}
	s := *p.current
	p.mu.Unlock()

	s.user.DisplayName = displayName
	s.user.PhotoURL = photoURL
	if resp.IdToken != "" {
		s.idToken = resp.IdToken
		s.refreshToken = resp.RefreshToken
		s.expiresAt = expiry(p.now(), strconv.FormatInt(resp.ExpiresIn, 10))
	}
	return p.establish(ctx, &s, identity.ReasonProfileUpdated), nil
}

func (p *Provider) IDToken(ctx context.Context, force bool) (string, error) {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return "", identity.ErrNoSession
	}
	s := *p.current
	gen := p.gen
	p.mu.Unlock()

	if !force && s.idToken != "" && p.now().Add(tokenSkew).Before(s.expiresAt) {
		return s.idToken, nil
	}

	tr, err := p.exchangeRefreshToken(ctx, s.refreshToken)

	p.tmu.Lock()
	p.mu.Lock()
	stale := p.gen != gen
	p.mu.Unlock()

	if stale {
		// the user signed in, out or changed profile while refreshing
		p.tmu.Unlock()
		if err != nil {
			return "", err
		}
		return p.IDToken(ctx, false)
	}
	defer p.tmu.Unlock()

	if err != nil {
		if identity.CodeOf(err) == identity.CodeTokenExpired {
			p.logger.Info(ctx, "refresh token rejected, signing out", "error", err)
			p.clear(ctx)
		}
		return "", err
	}

	p.mu.Lock()
	p.current.idToken = tr.IDToken
	p.current.refreshToken = tr.RefreshToken
	p.current.expiresAt = expiry(p.now(), tr.ExpiresIn)
	s = *p.current
	p.mu.Unlock()

	p.save(ctx, &s)
	return tr.IDToken, nil
}
