package pages

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeAPI records calls; unset funcs fail with client.ErrUnavailable.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	listVisas   func(ctx context.Context, limit int) ([]models.Visa, error)
	getVisa     func(ctx context.Context, id string) (*models.Visa, error)
	listByOwner func(ctx context.Context, email string) ([]models.Visa, error)
	createVisa  func(ctx context.Context, v models.Visa) (*models.Visa, error)
	updateVisa  func(ctx context.Context, v models.Visa) error
	deleteVisa  func(ctx context.Context, id string) error
	listApps    func(ctx context.Context, email string) ([]models.Application, error)
	createApp   func(ctx context.Context, a models.Application) (*models.Application, error)
	deleteApp   func(ctx context.Context, id string) error
}

var _ client.Client = (*fakeAPI)(nil)

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Ping(context.Context) error { return nil }

func (f *fakeAPI) ListVisas(ctx context.Context, limit int) ([]models.Visa, error) {
	f.record("ListVisas")
	if f.listVisas == nil {
		return nil, client.ErrUnavailable
	}
	return f.listVisas(ctx, limit)
}

func (f *fakeAPI) GetVisa(ctx context.Context, id string) (*models.Visa, error) {
	f.record("GetVisa " + id)
	if f.getVisa == nil {
		return nil, client.ErrUnavailable
	}
	return f.getVisa(ctx, id)
}

func (f *fakeAPI) ListVisasByOwner(ctx context.Context, email string) ([]models.Visa, error) {
	f.record("ListVisasByOwner " + email)
	if f.listByOwner == nil {
		return nil, client.ErrUnavailable
	}
	return f.listByOwner(ctx, email)
}

func (f *fakeAPI) CreateVisa(ctx context.Context, v models.Visa) (*models.Visa, error) {
	f.record("CreateVisa")
	if f.createVisa == nil {
		return nil, client.ErrUnavailable
	}
	return f.createVisa(ctx, v)
}

func (f *fakeAPI) UpdateVisa(ctx context.Context, v models.Visa) error {
	f.record("UpdateVisa " + v.ID)
	if f.updateVisa == nil {
		return client.ErrUnavailable
	}
	return f.updateVisa(ctx, v)
}

func (f *fakeAPI) DeleteVisa(ctx context.Context, id string) error {
	f.record("DeleteVisa " + id)
	if f.deleteVisa == nil {
		return client.ErrUnavailable
	}
	return f.deleteVisa(ctx, id)
}

func (f *fakeAPI) ListApplications(ctx context.Context, email string) ([]models.Application, error) {
	f.record("ListApplications " + email)
	if f.listApps == nil {
		return nil, client.ErrUnavailable
	}
	return f.listApps(ctx, email)
}

func (f *fakeAPI) CreateApplication(ctx context.Context, a models.Application) (*models.Application, error) {
	f.record("CreateApplication")
	if f.createApp == nil {
		return nil, client.ErrUnavailable
	}
	return f.createApp(ctx, a)
}

func (f *fakeAPI) DeleteApplication(ctx context.Context, id string) error {
	f.record("DeleteApplication " + id)
	if f.deleteApp == nil {
		return client.ErrUnavailable
	}
	return f.deleteApp(ctx, id)
}

func (f *fakeAPI) SaveUser(context.Context, models.UserRecord) error { return nil }

func (f *fakeAPI) UpdateUser(context.Context, string, models.UserPatch) error { return nil }

type fakeSession struct{ s session.Session }

func (f fakeSession) Current() session.Session { return f.s }

func signedIn(email, name string) fakeSession {
	return fakeSession{s: session.Session{Identity: &session.Identity{Email: email, DisplayName: name}}}
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testDeps(api client.Client, sv SessionView) Deps {
	return Deps{
		API:            api,
		Session:        sv,
		Policy:         FallbackNone,
		RequestTimeout: time.Second,
		LatestTimeout:  time.Second,
		Logger:         logging.Discard(),
		Now:            func() time.Time { return fixedNow },
	}
}

func newTestCache(t *testing.T) *ReadCache {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReadCache(client.NewRepositories(db).Cache)
}
