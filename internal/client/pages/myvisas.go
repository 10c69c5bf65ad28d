package pages

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/client/forms"
	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// MyVisas lists the visas the signed-in user added and lets them edit or
// delete each one.
type MyVisas struct {
	d     Deps
	visas *Loader[[]models.Visa]

	mu    sync.Mutex
	mode  Mode
	draft *models.Visa
}

// NewMyVisas fails with ErrNotSignedIn when nobody is signed in.
func NewMyVisas(d Deps) (*MyVisas, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	email := id.Email
	fetch := func(ctx context.Context) ([]models.Visa, error) {
		return d.API.ListVisasByOwner(ctx, email)
	}
	return &MyVisas{d: d, visas: newLoader[[]models.Visa](d, keyOwnVisas(email), 0, nil, fetch)}, nil
}

func (p *MyVisas) Load(ctx context.Context) (State[[]models.Visa], error) {
	return p.visas.Load(ctx)
}

func (p *MyVisas) State() State[[]models.Visa] { return p.visas.State() }

func (p *MyVisas) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// BeginEdit opens an edit draft of the visa with the given id.
func (p *MyVisas) BeginEdit(id string) (models.Visa, error) {
	v, ok := p.find(id)
	if !ok {
		return models.Visa{}, ErrUnknownItem
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeSubmitting {
		return models.Visa{}, ErrBusy
	}
	draft := v.Clone()
	p.draft = &draft
	p.mode = ModeEditing
	return draft.Clone(), nil
}

func (p *MyVisas) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeEditing {
		p.mode = ModeViewing
		p.draft = nil
	}
}

// SubmitEdit sends the edited draft. On success the list entry is replaced
// in place; on failure the list is untouched and the draft stays open.
func (p *MyVisas) SubmitEdit(ctx context.Context, edited models.Visa) error {
	p.mu.Lock()
	if p.mode != ModeEditing || p.draft == nil {
		p.mu.Unlock()
		return ErrNotEditing
	}
	base := *p.draft
	p.mu.Unlock()

	edited = edited.Clone()
	edited.ID = base.ID
	edited.AddedBy = base.AddedBy
	edited.AddedByName = base.AddedByName
	edited.CreatedAt = base.CreatedAt
	edited.RequiredDocuments = models.NormalizeDocuments(edited.RequiredDocuments)
	if err := forms.ValidateVisa(edited); err != nil {
		return err
	}

	p.mu.Lock()
	p.mode = ModeSubmitting
	p.mu.Unlock()

	err := p.d.write(ctx, func(ctx context.Context) error {
		return p.d.API.UpdateVisa(ctx, edited)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.mode = ModeEditing
		p.d.logger().Warn(ctx, "visa update failed", "id", edited.ID, "error", err)
		return err
	}
	p.mode = ModeViewing
	p.draft = nil
	p.visas.Commit(ctx, func(vs []models.Visa) []models.Visa {
		out := slices.Clone(vs)
		for i := range out {
			if out[i].ID == edited.ID {
				out[i] = edited
			}
		}
		return out
	})
	p.forgetShared(ctx, edited.ID)
	return nil
}

// Delete removes exactly the visa with id after the API accepted it.
func (p *MyVisas) Delete(ctx context.Context, id string) error {
	if _, ok := p.find(id); !ok {
		return ErrUnknownItem
	}
	err := p.d.write(ctx, func(ctx context.Context) error {
		return p.d.API.DeleteVisa(ctx, id)
	})
	if err != nil {
		p.d.logger().Warn(ctx, "visa delete failed", "id", id, "error", err)
		return err
	}
	p.visas.Commit(ctx, func(vs []models.Visa) []models.Visa {
		return slices.DeleteFunc(slices.Clone(vs), func(v models.Visa) bool { return v.ID == id })
	})
	p.forgetShared(ctx, id)
	return nil
}

// forgetShared drops the cached public reads that may still show visa id.
func (p *MyVisas) forgetShared(ctx context.Context, id string) {
	if p.d.Cache == nil {
		return
	}
	for _, key := range []string{keyAllVisas(), keyLatest(), keyVisa(id)} {
		if err := p.d.Cache.Forget(ctx, key); err != nil {
			p.d.logger().Warn(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
}

func (p *MyVisas) find(id string) (models.Visa, bool) {
	for _, v := range p.visas.State().Data {
		if v.ID == id {
			return v, true
		}
	}
	return models.Visa{}, false
}

func (p *MyVisas) Close() { p.visas.Close() }
