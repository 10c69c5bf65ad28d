package pages

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// MyApplications lists the signed-in user's applications.
type MyApplications struct {
	d    Deps
	apps *Loader[[]models.Application]

	mu     sync.Mutex
	search string
}

// NewMyApplications fails with ErrNotSignedIn when nobody is signed in.
func NewMyApplications(d Deps) (*MyApplications, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	email := id.Email
	fetch := func(ctx context.Context) ([]models.Application, error) {
		return d.API.ListApplications(ctx, email)
	}
	return &MyApplications{d: d, apps: newLoader[[]models.Application](d, keyApplications(email), 0, nil, fetch)}, nil
}

func (p *MyApplications) Load(ctx context.Context) (State[[]models.Application], error) {
	return p.apps.Load(ctx)
}

func (p *MyApplications) State() State[[]models.Application] { return p.apps.State() }

func (p *MyApplications) SetSearch(term string) {
	p.mu.Lock()
	p.search = term
	p.mu.Unlock()
}

func (p *MyApplications) Search() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.search
}

// Visible returns the applications matching the country search.
func (p *MyApplications) Visible() []models.Application {
	return models.SearchByCountry(p.apps.State().Data, p.Search())
}

// Cancel deletes exactly the application with id once the API accepted it.
func (p *MyApplications) Cancel(ctx context.Context, id string) error {
	if !slices.ContainsFunc(p.apps.State().Data, func(a models.Application) bool { return a.ID == id }) {
		return ErrUnknownItem
	}
	err := p.d.write(ctx, func(ctx context.Context) error {
		return p.d.API.DeleteApplication(ctx, id)
	})
	if err != nil {
		p.d.logger().Warn(ctx, "application cancel failed", "id", id, "error", err)
		return err
	}
	p.apps.Commit(ctx, func(as []models.Application) []models.Application {
		return slices.DeleteFunc(slices.Clone(as), func(a models.Application) bool { return a.ID == id })
	})
	return nil
}

func (p *MyApplications) Close() { p.apps.Close() }
