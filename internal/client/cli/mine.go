package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
)

func (a *App) Add(ctx context.Context, _ []string) error {
	if !a.enter(ctx, "/add-visa") {
		return pages.ErrNotSignedIn
	}
	a.open("/add-visa", nil)

	heading(a.out, "Add Visa")
	v, err := a.promptVisa(models.Visa{})
	if err != nil {
		return err
	}

	if _, err := pages.NewAddVisa(a.deps).Submit(ctx, v); err != nil {
		a.report(err, pages.MsgVisaAddFailed)
		return err
	}
	a.success(pages.MsgVisaAdded)
	return a.MyVisas(ctx, nil)
}

// promptVisa asks for every visa field, offering base values as defaults.
func (a *App) promptVisa(base models.Visa) (models.Visa, error) {
	v := base.Clone()
	var err error

	if v.CountryName, err = GetWithDefault(a.reader, "Country name", base.CountryName, a.out); err != nil {
		return v, err
	}
	if v.CountryImage, err = GetWithDefault(a.reader, "Country image URL", base.CountryImage, a.out); err != nil {
		return v, err
	}
	if v.VisaType, err = GetChoice(a.reader, "Visa type", models.VisaTypes, base.VisaType, a.out); err != nil {
		return v, err
	}
	if v.ProcessingTime, err = GetWithDefault(a.reader, "Processing time", base.ProcessingTime, a.out); err != nil {
		return v, err
	}
	if v.Fee, err = a.promptFloat("Fee (USD)", base.Fee, base.ID != ""); err != nil {
		return v, err
	}
	if v.Validity, err = GetWithDefault(a.reader, "Validity", base.Validity, a.out); err != nil {
		return v, err
	}
	if v.ApplicationMethod, err = GetChoice(a.reader, "Application method", models.ApplicationMethods, base.ApplicationMethod, a.out); err != nil {
		return v, err
	}
	age, err := a.promptFloat("Age restriction (0 for none)", float64(base.AgeRestriction), base.ID != "")
	if err != nil {
		return v, err
	}
	v.AgeRestriction = int(age)
	if v.RequiredDocuments, err = GetMultiChoice(a.reader, "Required documents (at least 3)", models.DocumentOptions, base.RequiredDocuments, a.out); err != nil {
		return v, err
	}

	prompt := "Description"
	if base.Description != "" {
		prompt += " (leave empty to keep the current one)"
	}
	desc, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return v, err
	}
	if desc != "" {
		v.Description = desc
	}
	return v, nil
}

// promptFloat re-asks until it gets a number; with keep an empty answer
// keeps def.
func (a *App) promptFloat(prompt string, def float64, keep bool) (float64, error) {
	d := ""
	if keep {
		d = strconv.FormatFloat(def, 'f', -1, 64)
	}
	for {
		s, err := GetWithDefault(a.reader, prompt, d, a.out)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
		if err == nil {
			return f, nil
		}
		a.printf("Please enter a number.\n")
	}
}

func (a *App) MyVisas(ctx context.Context, _ []string) error {
	if !a.enter(ctx, "/my-added-visas") {
		return pages.ErrNotSignedIn
	}
	p, err := pages.NewMyVisas(a.deps)
	if err != nil {
		a.report(err, "")
		return err
	}
	a.open("/my-added-visas", p)

	st, err := p.Load(ctx)
	if err != nil {
		return err
	}
	heading(a.out, "My Added Visas")
	if st.Status == pages.StatusFailed {
		a.report(st.Err, "Could not load your visas.")
		return st.Err
	}
	if note := sourceNote(st.Source, st.CachedAt); note != "" {
		a.printf("%s\n", note)
	}
	if len(st.Data) == 0 {
		a.printf("No visas added yet\n")
		return nil
	}
	for _, v := range st.Data {
		renderVisaCard(a.out, v)
	}
	a.printf("Use 'edit <id>' or 'delete <id>'.\n")
	return nil
}

// ownVisas returns the open my-visas page, opening it when needed.
func (a *App) ownVisas(ctx context.Context) *pages.MyVisas {
	a.mu.Lock()
	p := a.myVisas
	a.mu.Unlock()
	if p != nil {
		return p
	}
	if err := a.MyVisas(ctx, nil); err != nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.myVisas
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: edit <id>\n")
		return errors.New("missing id")
	}
	p := a.ownVisas(ctx)
	if p == nil {
		return pages.ErrNotLoaded
	}

	draft, err := p.BeginEdit(args[0])
	if err != nil {
		a.report(err, "")
		return err
	}
	defer p.CancelEdit()

	heading(a.out, fmt.Sprintf("Edit %s - %s", draft.CountryName, draft.VisaType))
	edited, err := a.promptVisa(draft)
	if err != nil {
		return err
	}
	if err := p.SubmitEdit(ctx, edited); err != nil {
		a.report(err, pages.MsgVisaUpdateFailed)
		return err
	}
	a.success(pages.MsgVisaUpdated)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: delete <id>\n")
		return errors.New("missing id")
	}
	p := a.ownVisas(ctx)
	if p == nil {
		return pages.ErrNotLoaded
	}

	ok, err := Confirm(a.reader, "Are you sure you want to delete this visa?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := p.Delete(ctx, args[0]); err != nil {
		a.report(err, pages.MsgVisaDeleteFailed)
		return err
	}
	a.success(pages.MsgVisaDeleted)
	return nil
}

// MyApps lists applications; args form an optional country search.
func (a *App) MyApps(ctx context.Context, args []string) error {
	if !a.enter(ctx, "/my-applications") {
		return pages.ErrNotSignedIn
	}
	p, err := pages.NewMyApplications(a.deps)
	if err != nil {
		a.report(err, "")
		return err
	}
	a.open("/my-applications", p)

	st, err := p.Load(ctx)
	if err != nil {
		return err
	}
	heading(a.out, "My Visa Applications")
	if st.Status == pages.StatusFailed {
		a.report(st.Err, pages.MsgApplicationsFailed)
		return st.Err
	}
	if note := sourceNote(st.Source, st.CachedAt); note != "" {
		a.printf("%s\n", note)
	}

	search := strings.Join(args, " ")
	p.SetSearch(search)
	visible := p.Visible()
	switch {
	case len(visible) == 0 && search != "":
		a.printf("No applications found for %q\n", search)
	case len(visible) == 0:
		a.printf("No applications yet\n")
	}
	for _, app := range visible {
		renderApplication(a.out, app)
	}
	return nil
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: cancel <id>\n")
		return errors.New("missing id")
	}

	a.mu.Lock()
	p := a.myApps
	a.mu.Unlock()
	if p == nil {
		if err := a.MyApps(ctx, nil); err != nil {
			return err
		}
		a.mu.Lock()
		p = a.myApps
		a.mu.Unlock()
	}

	ok, err := Confirm(a.reader, "Are you sure you want to cancel this application?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := p.Cancel(ctx, args[0]); err != nil {
		a.report(err, pages.MsgCancelFailed)
		return err
	}
	a.success(pages.MsgApplicationCancelled)
	return nil
}
