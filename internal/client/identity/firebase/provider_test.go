package firebase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, k string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[k], nil
}

func (s *memStore) Set(_ context.Context, k string, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
	return nil
}

func (s *memStore) Delete(_ context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, k)
	return nil
}

// fakeToolkit emulates the Identity Toolkit and Secure Token endpoints.
type fakeToolkit struct {
	mu            sync.Mutex
	accounts      map[string]string
	refreshErr    string
	refreshCalls  int
	lastAssertion map[string]any

	// refreshHeld, when set, receives each /token request before it is
	// answered, and the request waits for refreshRelease.
	refreshHeld    chan struct{}
	refreshRelease chan struct{}
}

func apiError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeToolkit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/token") {
		f.mu.Lock()
		held, release := f.refreshHeld, f.refreshRelease
		f.mu.Unlock()
		if held != nil {
			held <- struct{}{}
			<-release
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Query().Get("key") != "test-key" {
		apiError(w, 400, "API key not valid")
		return
	}

	var body map[string]any
	if strings.HasSuffix(r.URL.Path, "/token") {
		_ = r.ParseForm()
		f.refreshCalls++
		if f.refreshErr != "" {
			apiError(w, 400, f.refreshErr)
			return
		}
		writeJSON(w, map[string]any{
			"id_token": "id-refreshed", "refresh_token": "rt-2", "expires_in": "3600", "user_id": "uid-1",
		})
		return
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	switch {
	case strings.HasSuffix(r.URL.Path, "/signupNewUser"):
		email := body["email"].(string)
		if _, ok := f.accounts[email]; ok {
			apiError(w, 400, "EMAIL_EXISTS")
			return
		}
		if len(body["password"].(string)) < 6 {
			apiError(w, 400, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		f.accounts[email] = body["password"].(string)
		writeJSON(w, map[string]any{
			"localId": "uid-1", "email": email, "idToken": "id-1", "refreshToken": "rt-1", "expiresIn": "3600",
		})
	case strings.HasSuffix(r.URL.Path, "/verifyPassword"):
		email := body["email"].(string)
		if pw, ok := f.accounts[email]; !ok || pw != body["password"] {
			apiError(w, 400, "INVALID_LOGIN_CREDENTIALS")
			return
		}
		writeJSON(w, map[string]any{
			"localId": "uid-1", "email": email, "displayName": "Ann", "idToken": "id-1", "refreshToken": "rt-1", "expiresIn": "3600",
		})
	case strings.HasSuffix(r.URL.Path, "/setAccountInfo"):
		writeJSON(w, map[string]any{
			"localId": "uid-1", "displayName": body["displayName"], "photoUrl": body["photoUrl"],
			"idToken": "id-3", "refreshToken": "rt-3", "expiresIn": "3600",
		})
	case strings.HasSuffix(r.URL.Path, "/createAuthUri"):
		writeJSON(w, map[string]any{
			"authUri":   "https://accounts.example/o/oauth2?redirect_uri=" + url.QueryEscape(body["continueUri"].(string)),
			"sessionId": "sess-1",
		})
	case strings.HasSuffix(r.URL.Path, "/verifyAssertion"):
		f.lastAssertion = body
		writeJSON(w, map[string]any{
			"localId": "uid-g", "email": "g@example.com", "displayName": "G", "photoUrl": "https://img/g.png",
			"idToken": "id-g", "refreshToken": "rt-g", "expiresIn": "3600",
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestProvider(t *testing.T, store Store, opener func(context.Context, string) error, timeout time.Duration) (*Provider, *fakeToolkit) {
	t.Helper()
	fk := &fakeToolkit{accounts: map[string]string{}}
	srv := httptest.NewServer(fk)
	t.Cleanup(srv.Close)

	if opener == nil {
		opener = func(context.Context, string) error { return nil }
	}
	p, err := New(context.Background(), Config{
		APIKey:           "test-key",
		Endpoint:         srv.URL + "/",
		SecureTokenURL:   srv.URL + "/token",
		FederatedTimeout: timeout,
		Opener:           opener,
	}, store, logging.Discard())
	require.NoError(t, err)
	return p, fk
}

func firstChange(t *testing.T, ch <-chan identity.Change) identity.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("no change observed")
		return identity.Change{}
	}
}

func TestNew_RequiresAPIKeyAndOpener(t *testing.T) {
	_, err := New(context.Background(), Config{}, newMemStore(), logging.Discard())
	require.Error(t, err)
	_, err = New(context.Background(), Config{APIKey: "k"}, newMemStore(), logging.Discard())
	require.Error(t, err)
}

func TestCreateAccount_PersistsSession(t *testing.T) {
	store := newMemStore()
	p, _ := newTestProvider(t, store, nil, time.Second)
	ctx := context.Background()

	u, err := p.CreateAccount(ctx, "a@b.com", "Abc123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "uid-1", u.UID)

	raw, _ := store.Get(ctx, SessionKey)
	require.NotNil(t, raw)
	assert.Contains(t, string(raw), `"refreshToken":"rt-1"`)

	tok, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "id-1", tok)
}

func TestErrorsAreMappedToCodes(t *testing.T) {
	p, _ := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "a@b.com", "abc")
	assert.Equal(t, identity.CodeWeakPassword, identity.CodeOf(err))

	_, err = p.CreateAccount(ctx, "a@b.com", "Abc123")
	require.NoError(t, err)
	_, err = p.CreateAccount(ctx, "a@b.com", "Abc123")
	assert.Equal(t, identity.CodeEmailInUse, identity.CodeOf(err))

	_, err = p.SignInWithPassword(ctx, "a@b.com", "nope")
	assert.Equal(t, identity.CodeInvalidCredential, identity.CodeOf(err))
}

func TestSignInWithPassword_ThenForceRefresh(t *testing.T) {
	p, fk := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx := context.Background()
	fk.accounts["a@b.com"] = "Abc123"

	u, err := p.SignInWithPassword(ctx, "a@b.com", "Abc123")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.DisplayName)

	tok, err := p.IDToken(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "id-refreshed", tok)
	assert.Equal(t, 1, fk.refreshCalls)
}

func TestIDToken_RejectedRefreshSignsOut(t *testing.T) {
	p, fk := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx := context.Background()
	fk.accounts["a@b.com"] = "Abc123"
	_, err := p.SignInWithPassword(ctx, "a@b.com", "Abc123")
	require.NoError(t, err)

	fk.refreshErr = "TOKEN_EXPIRED"
	_, err = p.IDToken(ctx, true)
	assert.Equal(t, identity.CodeTokenExpired, identity.CodeOf(err))

	_, err = p.IDToken(ctx, false)
	require.ErrorIs(t, err, identity.ErrNoSession)
}

func TestUpdateProfile(t *testing.T) {
	p, _ := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx := context.Background()

	_, err := p.UpdateProfile(ctx, "A", "")
	require.ErrorIs(t, err, identity.ErrNoSession)

	_, err = p.CreateAccount(ctx, "a@b.com", "Abc123")
	require.NoError(t, err)

	u, err := p.UpdateProfile(ctx, "Alice", "https://img/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, "https://img/a.png", u.PhotoURL)

	tok, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "id-3", tok)
}

func TestStart_RestoresPersistedSession(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Set(context.Background(), SessionKey,
		[]byte(`{"uid":"uid-1","email":"a@b.com","displayName":"Ann","refreshToken":"rt-1"}`)))
	p, _ := newTestProvider(t, store, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.Observe(ctx)
	p.Start(ctx)

	c := firstChange(t, ch)
	require.NotNil(t, c.User)
	assert.Equal(t, "a@b.com", c.User.Email)
	assert.Equal(t, identity.ReasonRestored, c.Reason)

	tok, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "id-refreshed", tok)
}

func TestStart_RejectedSessionIsForgotten(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Set(context.Background(), SessionKey,
		[]byte(`{"uid":"uid-1","email":"a@b.com","refreshToken":"rt-old"}`)))
	p, fk := newTestProvider(t, store, nil, time.Second)
	fk.refreshErr = "INVALID_REFRESH_TOKEN"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.Observe(ctx)
	p.Start(ctx)

	assert.Nil(t, firstChange(t, ch).User)
	raw, _ := store.Get(ctx, SessionKey)
	assert.Nil(t, raw)
}

func TestStart_LateRestoreDoesNotOverrideNewSignIn(t *testing.T) {
	for _, refreshErr := range []string{"TOKEN_EXPIRED", ""} {
		t.Run("refresh="+refreshErr, func(t *testing.T) {
			store := newMemStore()
			require.NoError(t, store.Set(context.Background(), SessionKey,
				[]byte(`{"uid":"uid-0","email":"old@x.com","refreshToken":"rt-old"}`)))
			p, fk := newTestProvider(t, store, nil, time.Second)
			fk.accounts["new@x.com"] = "secret1"
			fk.refreshErr = refreshErr
			fk.refreshHeld = make(chan struct{}, 1)
			fk.refreshRelease = make(chan struct{})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := p.Observe(ctx)
			p.Start(ctx)

			select {
			case <-fk.refreshHeld:
			case <-time.After(3 * time.Second):
				t.Fatal("restore never reached the token endpoint")
			}

			u, err := p.SignInWithPassword(ctx, "new@x.com", "secret1")
			require.NoError(t, err)
			assert.Equal(t, "new@x.com", u.Email)
			assert.Equal(t, identity.ReasonSignedIn, firstChange(t, ch).Reason)

			close(fk.refreshRelease)
			require.Eventually(t, func() bool {
				fk.mu.Lock()
				defer fk.mu.Unlock()
				return fk.refreshCalls == 1
			}, 3*time.Second, 10*time.Millisecond)

			select {
			case c := <-ch:
				t.Fatalf("unexpected identity change %v after sign-in", c.Reason)
			case <-time.After(100 * time.Millisecond):
			}

			cur, resolved := p.Current()
			require.True(t, resolved)
			require.NotNil(t, cur)
			assert.Equal(t, "new@x.com", cur.Email)

			raw, err := store.Get(ctx, SessionKey)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "new@x.com")
			assert.Contains(t, string(raw), "rt-1")
		})
	}
}

func TestIDToken_StaleRefreshDoesNotSignOutNewSession(t *testing.T) {
	p, fk := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx := context.Background()
	fk.accounts["new@x.com"] = "secret1"
	_, err := p.CreateAccount(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	fk.mu.Lock()
	fk.refreshErr = "TOKEN_EXPIRED"
	fk.refreshHeld = make(chan struct{}, 1)
	fk.refreshRelease = make(chan struct{})
	fk.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		_, err := p.IDToken(ctx, true)
		errc <- err
	}()
	<-fk.refreshHeld

	_, err = p.SignInWithPassword(ctx, "new@x.com", "secret1")
	require.NoError(t, err)
	close(fk.refreshRelease)

	assert.Equal(t, identity.CodeTokenExpired, identity.CodeOf(<-errc))
	cur, _ := p.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "new@x.com", cur.Email)
}

func TestStart_NothingPersisted(t *testing.T) {
	p, _ := newTestProvider(t, newMemStore(), nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.Observe(ctx)
	p.Start(ctx)

	assert.Nil(t, firstChange(t, ch).User)
}

// browse follows the auth URI's redirect back to the loopback listener.
func browse(t *testing.T, query string) func(context.Context, string) error {
	return func(ctx context.Context, authURI string) error {
		u, err := url.Parse(authURI)
		require.NoError(t, err)
		redirect := u.Query().Get("redirect_uri")
		go func() {
			resp, err := http.Get(redirect + "?" + query)
			if err == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestSignInFederated_Success(t *testing.T) {
	p, fk := newTestProvider(t, newMemStore(), browse(t, "code=abc&state=xyz"), 3*time.Second)

	u, err := p.SignInFederated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", u.Email)
	assert.Equal(t, "G", u.DisplayName)

	assert.Equal(t, "sess-1", fk.lastAssertion["sessionId"])
	assert.Contains(t, fk.lastAssertion["requestUri"], "code=abc")
	assert.Contains(t, fk.lastAssertion["requestUri"], "http://127.0.0.1:")
}

func TestSignInFederated_IdPDenied(t *testing.T) {
	p, _ := newTestProvider(t, newMemStore(), browse(t, "error=access_denied"), 3*time.Second)

	_, err := p.SignInFederated(context.Background())
	assert.Equal(t, identity.CodePopupCancelled, identity.CodeOf(err))
}

func TestSignInFederated_TimeoutIsPopupClosed(t *testing.T) {
	p, _ := newTestProvider(t, newMemStore(), nil, 50*time.Millisecond)

	_, err := p.SignInFederated(context.Background())
	assert.Equal(t, identity.CodePopupClosed, identity.CodeOf(err))
}

func TestSignInFederated_CallerCancelIsPopupCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opener := func(context.Context, string) error {
		cancel()
		return nil
	}
	p, _ := newTestProvider(t, newMemStore(), opener, 3*time.Second)

	_, err := p.SignInFederated(ctx)
	assert.Equal(t, identity.CodePopupCancelled, identity.CodeOf(err))
}

func TestCodeForMessage(t *testing.T) {
	assert.Equal(t, identity.CodeTooManyRequests, codeForMessage("TOO_MANY_ATTEMPTS_TRY_LATER : Try again later."))
	assert.Equal(t, identity.CodeUserNotFound, codeForMessage("EMAIL_NOT_FOUND"))
	assert.Equal(t, identity.CodeWrongPassword, codeForMessage("INVALID_PASSWORD"))
	assert.Equal(t, identity.CodeInternal, codeForMessage("SOMETHING_NEW"))
}
