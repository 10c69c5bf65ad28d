package cli

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// memAPI is an in-memory visa API.
type memAPI struct {
	mu      sync.Mutex
	visas   []models.Visa
	apps    []models.Application
	users   []models.UserRecord
	calls   []string
	pingErr error
	nextID  int
}

var _ client.Client = (*memAPI)(nil)

func (m *memAPI) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *memAPI) setPingErr(err error) {
	m.mu.Lock()
	m.pingErr = err
	m.mu.Unlock()
}

func (m *memAPI) id(prefix string) string {
	m.nextID++
	return prefix + strconv.Itoa(m.nextID)
}

func (m *memAPI) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *memAPI) ListVisas(_ context.Context, limit int) ([]models.Visa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListVisas")
	out := slices.Clone(m.visas)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAPI) GetVisa(_ context.Context, id string) (*models.Visa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetVisa " + id)
	for _, v := range m.visas {
		if v.ID == id {
			v := v.Clone()
			return &v, nil
		}
	}
	return nil, client.ErrNotFound
}

func (m *memAPI) ListVisasByOwner(_ context.Context, email string) ([]models.Visa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListVisasByOwner " + email)
	var out []models.Visa
	for _, v := range m.visas {
		if v.AddedBy == email {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

func (m *memAPI) CreateVisa(_ context.Context, v models.Visa) (*models.Visa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateVisa")
	v.ID = m.id("v")
	m.visas = append(m.visas, v)
	return &v, nil
}

func (m *memAPI) UpdateVisa(_ context.Context, v models.Visa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateVisa " + v.ID)
	for i := range m.visas {
		if m.visas[i].ID == v.ID {
			m.visas[i] = v
			return nil
		}
	}
	return client.ErrNotFound
}

func (m *memAPI) DeleteVisa(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteVisa " + id)
	m.visas = slices.DeleteFunc(m.visas, func(v models.Visa) bool { return v.ID == id })
	return nil
}

func (m *memAPI) ListApplications(_ context.Context, email string) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListApplications " + email)
	var out []models.Application
	for _, a := range m.apps {
		if a.ApplicantEmail == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAPI) CreateApplication(_ context.Context, a models.Application) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateApplication")
	a.ID = m.id("a")
	m.apps = append(m.apps, a)
	return &a, nil
}

func (m *memAPI) DeleteApplication(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteApplication " + id)
	m.apps = slices.DeleteFunc(m.apps, func(a models.Application) bool { return a.ID == id })
	return nil
}

func (m *memAPI) SaveUser(_ context.Context, u models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SaveUser " + u.Email)
	m.users = append(m.users, u)
	return nil
}

func (m *memAPI) UpdateUser(_ context.Context, email string, _ models.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateUser " + email)
	return nil
}
