package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// Listing shows every visa with an optional type filter.
type Listing struct {
	visas *Loader[[]models.Visa]

	mu     sync.Mutex
	filter string
}

func NewListing(d Deps) *Listing {
	fetch := func(ctx context.Context) ([]models.Visa, error) {
		return d.API.ListVisas(ctx, 0)
	}
	return &Listing{
		visas:  newLoader(d, keyAllVisas(), 0, sampleVisas(0), fetch),
		filter: models.AllTypes,
	}
}

func (l *Listing) Load(ctx context.Context) (State[[]models.Visa], error) {
	return l.visas.Load(ctx)
}

func (l *Listing) State() State[[]models.Visa] { return l.visas.State() }

// SetFilter selects a visa type or models.AllTypes.
func (l *Listing) SetFilter(visaType string) error {
	if visaType == "" {
		visaType = models.AllTypes
	}
	if visaType != models.AllTypes && !models.IsVisaType(visaType) {
		return fmt.Errorf("unknown visa type %q", visaType)
	}
	l.mu.Lock()
	l.filter = visaType
	l.mu.Unlock()
	return nil
}

func (l *Listing) Filter() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Visible returns the loaded visas that pass the filter.
func (l *Listing) Visible() []models.Visa {
	return models.FilterByType(l.visas.State().Data, l.Filter())
}

// Summary is the result count line, e.g. "Showing 2 visas for Work Visa".
func (l *Listing) Summary() string {
	n := len(l.Visible())
	noun := "visas"
	if n == 1 {
		noun = "visa"
	}
	s := fmt.Sprintf("Showing %d %s", n, noun)
	if f := l.Filter(); f != models.AllTypes {
		s += " for " + f
	}
	return s
}

func (l *Listing) Close() { l.visas.Close() }
