package pages

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/client/forms"
	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// Details shows one visa and hosts the apply flow.
type Details struct {
	d    Deps
	id   string
	visa *Loader[*models.Visa]

	mu   sync.Mutex
	mode Mode
}

func NewDetails(d Deps, id string) *Details {
	fetch := func(ctx context.Context) (*models.Visa, error) {
		return d.API.GetVisa(ctx, id)
	}
	sample := func() (*models.Visa, bool) {
		for _, v := range models.SampleVisas() {
			if v.ID == id {
				return &v, true
			}
		}
		return nil, false
	}
	return &Details{d: d, id: id, visa: newLoader(d, keyVisa(id), 0, sample, fetch)}
}

func (p *Details) Load(ctx context.Context) (State[*models.Visa], error) {
	return p.visa.Load(ctx)
}

func (p *Details) State() State[*models.Visa] { return p.visa.State() }

func (p *Details) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// OpenApply switches to the apply form; the visa must be loaded and the
// user signed in.
func (p *Details) OpenApply() error {
	if p.visa.State().Data == nil {
		return ErrNotLoaded
	}
	if _, err := p.d.identity(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeSubmitting {
		return ErrBusy
	}
	p.mode = ModeEditing
	return nil
}

func (p *Details) CloseApply() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeEditing {
		p.mode = ModeViewing
	}
}

// Apply submits an application for the loaded visa on behalf of the
// signed-in user. The form stays open when submission fails.
func (p *Details) Apply(ctx context.Context, firstName, lastName string) (*models.Application, error) {
	if err := forms.ValidateApplication(firstName, lastName); err != nil {
		return nil, err
	}
	v := p.visa.State().Data
	if v == nil {
		return nil, ErrNotLoaded
	}
	id, err := p.d.identity()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.mode == ModeSubmitting {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.mode = ModeSubmitting
	p.mu.Unlock()

	app := models.NewApplication(*v, id.Email, firstName, lastName, p.d.now())
	var created *models.Application
	err = p.d.write(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.d.API.CreateApplication(ctx, app)
		return err
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.mode = ModeEditing
		p.d.logger().Warn(ctx, "application submit failed", "visa", v.ID, "error", err)
		return nil, err
	}
	p.mode = ModeViewing
	if p.d.Cache != nil {
		if ferr := p.d.Cache.Forget(ctx, keyApplications(id.Email)); ferr != nil {
			p.d.logger().Warn(ctx, "cache invalidation failed", "error", ferr)
		}
	}
	return created, nil
}

func (p *Details) Close() { p.visa.Close() }
