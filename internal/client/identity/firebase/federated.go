package firebase

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/go-chi/chi/v5"
	"google.golang.org/api/identitytoolkit/v3"
)

const callbackPath = "/__/auth/handler"

// SignInFederated runs the IdP redirect flow: it asks the toolkit for an
// auth URI whose redirect points at a loopback listener, hands the URI to
// the opener and waits for the browser to come back.
//
// No callback within FederatedTimeout maps to popup-closed; an IdP error
// (e.g. access_denied) or caller cancellation maps to popup-cancelled.
func (p *Provider) SignInFederated(ctx context.Context) (*identity.User, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, identity.NewError(identity.CodeInternal, fmt.Errorf("loopback listener: %w", err))
	}
	nonce, err := common.MakeRandHexString(16)
	if err != nil {
		_ = ln.Close()
		return nil, identity.NewError(identity.CodeInternal, fmt.Errorf("callback nonce: %w", err))
	}
	// only the browser redirect knows the per-attempt path
	path := callbackPath + "/" + nonce
	base := "http://" + ln.Addr().String()

	callbacks := make(chan *url.URL, 1)
	r := chi.NewRouter()
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		select {
		case callbacks <- r.URL:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, "Sign-in received. You can close this window and return to the terminal.")
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Warn(ctx, "loopback callback server stopped", "error", err)
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	auth, err := p.svc.Relyingparty.CreateAuthUri(&identitytoolkit.IdentitytoolkitRelyingpartyCreateAuthUriRequest{
		ProviderId:  p.cfg.FederatedProvider,
		ContinueUri: base + path,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	if err := p.cfg.Opener(ctx, auth.AuthUri); err != nil {
		return nil, identity.NewError(identity.CodePopupClosed, err)
	}

	wctx, cancel := context.WithTimeout(ctx, p.cfg.FederatedTimeout)
	defer cancel()

	var cb *url.URL
	select {
	case cb = <-callbacks:
	case <-wctx.Done():
		if ctx.Err() != nil {
			return nil, identity.NewError(identity.CodePopupCancelled, ctx.Err())
		}
		return nil, identity.NewError(identity.CodePopupClosed, wctx.Err())
	}

	if idpErr := cb.Query().Get("error"); idpErr != "" {
		return nil, identity.NewError(identity.CodePopupCancelled, errors.New(idpErr))
	}

	resp, err := p.svc.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		RequestUri:          base + cb.RequestURI(),
		SessionId:           auth.SessionId,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	if resp.ErrorMessage != "" {
		return nil, identity.NewError(codeForMessage(resp.ErrorMessage), errors.New(resp.ErrorMessage))
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
