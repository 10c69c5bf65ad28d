package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/identity/local"
	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
	"github.com/dmitrijs2005/borderease/internal/client/services"
	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

type harness struct {
	app      *App
	api      *memAPI
	store    *session.Store
	provider *local.Provider
	out      *bytes.Buffer
}

// newHarness builds an App on the local provider. When started is false the
// provider never reports, so the session stays loading.
func newHarness(t *testing.T, input string, started bool) *harness {
	t.Helper()

	oldTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = oldTerm })

	ctx := context.Background()
	p := local.New(local.Config{Secret: []byte("s"), BcryptCost: bcrypt.MinCost})
	api := &memAPI{}
	store := session.NewStore(p, api, logging.Discard())
	store.Init(ctx)
	t.Cleanup(store.Dispose)
	if started {
		p.Start(ctx)
		waitResolved(t, store)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repos := client.NewRepositories(db)
	cache := pages.NewReadCache(repos.Cache)

	out := &bytes.Buffer{}
	app := NewApp(Components{
		Sessions: store,
		API:      api,
		Deps: pages.Deps{
			API:            api,
			Session:        store,
			Cache:          cache,
			Policy:         pages.FallbackNone,
			RequestTimeout: time.Second,
			LatestTimeout:  time.Second,
			Logger:         logging.Discard(),
		},
		Theme:   services.NewThemeService(repos.Preferences),
		Offline: services.NewOfflineService(api, cache, time.Hour, logging.Discard()),
		Logger:  logging.Discard(),
		In:      strings.NewReader(input),
		Out:     out,
	})
	return &harness{app: app, api: api, store: store, provider: p, out: out}
}

func waitResolved(t *testing.T, s *session.Store) {
	t.Helper()
	ch, cancel := s.Subscribe()
	defer cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-ch:
			if !snap.Loading {
				return
			}
		case <-deadline:
			t.Fatal("session never resolved")
		}
	}
}

// register creates a@b.com and optionally signs out again.
func (h *harness) register(t *testing.T, signOut bool) {
	t.Helper()
	ctx := context.Background()
	_, err := h.store.SignUp(ctx, "a@b.com", "Abc123", "Ann", "")
	require.NoError(t, err)
	if signOut {
		require.NoError(t, h.store.SignOut(ctx))
	}
}

func ownVisa() models.Visa {
	v := models.SampleVisas()[0]
	v.ID = "x1"
	v.AddedBy = "a@b.com"
	v.AddedByName = "Ann"
	v.Description = "Tourist visa for short visits"
	return v
}

func TestApp_ProtectedPageRedirectsThenReturnsAfterLogin(t *testing.T) {
	h := newHarness(t, "a@b.com\nAbc123\n", true)
	h.register(t, true)
	ctx := context.Background()

	err := h.app.MyApps(ctx, nil)
	require.ErrorIs(t, err, pages.ErrNotSignedIn)
	assert.Equal(t, "/login", h.app.Location())
	assert.Contains(t, h.out.String(), "Please sign in to continue")
	assert.NotContains(t, h.api.Calls(), "ListApplications a@b.com")

	require.NoError(t, h.app.Login(ctx, nil))
	assert.Equal(t, "/my-applications", h.app.Location())
	assert.Contains(t, h.out.String(), "[ok] Welcome back!")
	assert.Contains(t, h.out.String(), "No applications yet")
	assert.Contains(t, h.api.Calls(), "ListApplications a@b.com")
}

func TestApp_LoginWithoutOriginGoesHome(t *testing.T) {
	h := newHarness(t, "a@b.com\nAbc123\n", true)
	h.register(t, true)

	require.NoError(t, h.app.Login(context.Background(), nil))
	assert.Equal(t, "/", h.app.Location())
	assert.Contains(t, h.out.String(), "Explore Latest Visa Options")
}

func TestApp_WrongPasswordKeepsUserOnLogin(t *testing.T) {
	h := newHarness(t, "a@b.com\nWrong1\n", true)
	h.register(t, true)

	require.Error(t, h.app.Login(context.Background(), nil))
	assert.Nil(t, h.store.Current().Identity)
	assert.Contains(t, h.out.String(), "[error] ")
	assert.NotContains(t, h.out.String(), "Welcome back!")
}

func TestApp_GuardWaitsWhileSessionLoads(t *testing.T) {
	h := newHarness(t, "", false)
	h.app.GuardWait = 50 * time.Millisecond
	ctx := context.Background()

	err := h.app.MyVisas(ctx, nil)
	require.ErrorIs(t, err, pages.ErrNotSignedIn)
	assert.Equal(t, "/", h.app.Location(), "no redirect while the session is unknown")
	assert.Contains(t, h.out.String(), "Loading...")
	assert.Contains(t, h.out.String(), "Still checking your session")
	assert.Equal(t, "...", h.app.status())

	h.app.GuardWait = 3 * time.Second
	go func() {
		time.Sleep(20 * time.Millisecond)
		h.provider.Start(ctx)
	}()
	err = h.app.MyVisas(ctx, nil)
	require.ErrorIs(t, err, pages.ErrNotSignedIn)
	assert.Equal(t, "/login", h.app.Location())
}

func TestApp_LogoutLeavesProtectedPage(t *testing.T) {
	h := newHarness(t, "a@b.com\nAbc123\n", true)
	h.register(t, false)
	ctx := context.Background()

	require.NoError(t, h.app.MyVisas(ctx, nil))
	assert.Equal(t, "/my-added-visas", h.app.Location())
	assert.Contains(t, h.out.String(), "No visas added yet")

	require.NoError(t, h.app.Logout(ctx, nil))
	assert.Nil(t, h.store.Current().Identity)
	assert.Equal(t, "/login", h.app.Location())
	assert.Contains(t, h.out.String(), "[ok] Logged out successfully")

	require.NoError(t, h.app.Login(ctx, nil))
	assert.Equal(t, "/my-added-visas", h.app.Location())
}

func TestApp_LogoutOnPublicPageStays(t *testing.T) {
	h := newHarness(t, "", true)
	h.register(t, false)
	ctx := context.Background()

	require.NoError(t, h.app.Visas(ctx, nil))
	require.NoError(t, h.app.Logout(ctx, nil))
	assert.Equal(t, "/visas", h.app.Location())
}

func TestApp_Register(t *testing.T) {
	h := newHarness(t, "Ann\na@b.com\n\nAbc123\nAbc123\n", true)

	require.NoError(t, h.app.Register(context.Background(), nil))
	assert.Equal(t, "/", h.app.Location())
	assert.Contains(t, h.out.String(), "[ok] Account created successfully!")
	assert.Equal(t, "a@b.com", h.app.status())
}

func TestApp_RegisterValidation(t *testing.T) {
	h := newHarness(t, "Ann\na@b.com\n\nabc\nabc\n", true)

	require.Error(t, h.app.Register(context.Background(), nil))
	assert.Nil(t, h.store.Current().Identity)
	assert.Contains(t, h.out.String(), "Please fix the following:")
	assert.Contains(t, h.out.String(), "  - password: ")
}

func TestApp_EditVisaFee(t *testing.T) {
	// Every prompt keeps its default except the fee.
	h := newHarness(t, "\n\n\n\n250\n\n\n\n\n\n", true)
	h.api.visas = []models.Visa{ownVisa()}
	h.register(t, false)
	ctx := context.Background()

	require.NoError(t, h.app.Edit(ctx, []string{"x1"}))
	assert.Contains(t, h.out.String(), "[ok] "+pages.MsgVisaUpdated)

	got, err := h.api.GetVisa(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Fee)
	assert.Equal(t, "United States", got.CountryName)
	assert.Equal(t, "a@b.com", got.AddedBy)

	st := h.app.myVisas.State()
	require.Len(t, st.Data, 1)
	assert.Equal(t, 250.0, st.Data[0].Fee)
}

func TestApp_AddVisaRejectsTooFewDocuments(t *testing.T) {
	input := strings.Join([]string{
		"Japan",
		"https://flagcdn.com/w320/jp.png",
		"1",
		"5 Days",
		"25",
		"90 Days",
		"2",
		"0",
		"1,2",
		"Short stay",
		"",
		"",
	}, "\n")
	h := newHarness(t, input, true)
	h.register(t, false)

	require.Error(t, h.app.Add(context.Background(), nil))
	assert.Contains(t, h.out.String(), "  - requiredDocuments: ")
	assert.NotContains(t, h.api.Calls(), "CreateVisa")
}

func TestApp_DeleteAndCancelNeedConfirmation(t *testing.T) {
	h := newHarness(t, "n\ny\ny\n", true)
	h.register(t, false)
	h.api.visas = []models.Visa{ownVisa()}
	h.api.apps = []models.Application{
		{ID: "a1", CountryName: "Japan", ApplicantEmail: "a@b.com"},
		{ID: "a2", CountryName: "Canada", ApplicantEmail: "a@b.com"},
		{ID: "a3", CountryName: "Germany", ApplicantEmail: "a@b.com"},
	}
	ctx := context.Background()

	require.NoError(t, h.app.Delete(ctx, []string{"x1"}))
	assert.NotContains(t, h.api.Calls(), "DeleteVisa x1")

	require.NoError(t, h.app.Delete(ctx, []string{"x1"}))
	assert.Contains(t, h.out.String(), "[ok] "+pages.MsgVisaDeleted)
	assert.Empty(t, h.api.visas)

	require.NoError(t, h.app.Cancel(ctx, []string{"a2"}))
	assert.Contains(t, h.out.String(), "[ok] "+pages.MsgApplicationCancelled)
	ids := []string{}
	for _, a := range h.app.myApps.State().Data {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a1", "a3"}, ids)
}

func TestApp_MyAppsSearch(t *testing.T) {
	h := newHarness(t, "", true)
	h.register(t, false)
	h.api.apps = []models.Application{{ID: "a1", CountryName: "Japan", ApplicantEmail: "a@b.com"}}

	require.NoError(t, h.app.MyApps(context.Background(), []string{"atlantis"}))
	assert.Contains(t, h.out.String(), `No applications found for "atlantis"`)
}

func TestApp_VisaDetailsAndApply(t *testing.T) {
	h := newHarness(t, "Ann\nLee\n", true)
	h.register(t, false)
	h.api.visas = []models.Visa{ownVisa()}
	ctx := context.Background()

	require.NoError(t, h.app.Visa(ctx, []string{"x1"}))
	assert.Equal(t, "/visas/x1", h.app.Location())

	require.NoError(t, h.app.Apply(ctx, nil))
	assert.Contains(t, h.out.String(), "[ok] "+pages.MsgApplicationSubmitted)
	require.Len(t, h.api.apps, 1)
	assert.Equal(t, "x1", h.api.apps[0].VisaID)
	assert.Equal(t, "a@b.com", h.api.apps[0].ApplicantEmail)
	assert.Equal(t, 160.0, h.api.apps[0].Fee)
}

func TestApp_ApplyWithoutVisa(t *testing.T) {
	h := newHarness(t, "", true)
	require.ErrorIs(t, h.app.Apply(context.Background(), nil), pages.ErrNotLoaded)
	assert.Contains(t, h.out.String(), "Open a visa first")
}

func TestApp_VisasFilter(t *testing.T) {
	h := newHarness(t, "", true)
	h.api.visas = models.SampleVisas()
	ctx := context.Background()

	require.NoError(t, h.app.Visas(ctx, []string{"student"}))
	assert.Contains(t, h.out.String(), "Showing 2 visas for Student Visa")

	require.Error(t, h.app.Visas(ctx, []string{"space"}))
	assert.Contains(t, h.out.String(), "Unknown visa type")
}

func TestApp_Theme(t *testing.T) {
	h := newHarness(t, "", true)
	require.NoError(t, h.app.Theme(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Theme: dark")
}

func TestApp_OnlineStatusWatcher(t *testing.T) {
	h := newHarness(t, "", true)
	h.api.setPingErr(errors.New("down"))
	assert.Equal(t, "guest", h.app.status())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.app.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)

	require.Eventually(t, func() bool { return h.app.Mode() == ModeOffline }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "guest offline", h.app.status())

	h.api.setPingErr(nil)
	require.Eventually(t, func() bool { return h.app.Mode() == ModeOnline }, 2*time.Second, 5*time.Millisecond)
}
