package pages

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/forms"
	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// AddVisa validates and submits a new visa owned by the signed-in user.
type AddVisa struct {
	d Deps
}

func NewAddVisa(d Deps) *AddVisa { return &AddVisa{d: d} }

// Submit returns a *forms.ValidationError, without calling the API, when
// the form is incomplete.
func (p *AddVisa) Submit(ctx context.Context, v models.Visa) (*models.Visa, error) {
	v = v.Clone()
	v.ID = ""
	v.CountryName = strings.TrimSpace(v.CountryName)
	v.CountryImage = strings.TrimSpace(v.CountryImage)
	v.RequiredDocuments = models.NormalizeDocuments(v.RequiredDocuments)
	if err := forms.ValidateVisa(v); err != nil {
		return nil, err
	}

	id, err := p.d.identity()
	if err != nil {
		return nil, err
	}
	v.AddedBy = id.Email
	v.AddedByName = id.DisplayName
	v.CreatedAt = p.d.now().UTC().Format(time.RFC3339)

	var created *models.Visa
	err = p.d.write(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.d.API.CreateVisa(ctx, v)
		return err
	})
	if err != nil {
		p.d.logger().Warn(ctx, "add visa failed", "error", err)
		return nil, err
	}
	if p.d.Cache != nil {
		if ferr := p.d.Cache.Forget(ctx, keyOwnVisas(id.Email)); ferr != nil {
			p.d.logger().Warn(ctx, "cache invalidation failed", "error", ferr)
		}
	}
	return created, nil
}
