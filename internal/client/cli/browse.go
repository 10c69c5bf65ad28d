package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/borderease/internal/client/guard"
	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
)

// Navigate shows the page at location.
func (a *App) Navigate(ctx context.Context, location string) error {
	switch path, _, _ := strings.Cut(location, "?"); {
	case path == "/":
		return a.Home(ctx, nil)
	case path == "/visas":
		return a.Visas(ctx, nil)
	case strings.HasPrefix(path, "/visas/"):
		return a.Visa(ctx, []string{strings.TrimPrefix(path, "/visas/")})
	case path == "/add-visa":
		return a.Add(ctx, nil)
	case path == "/my-added-visas":
		return a.MyVisas(ctx, nil)
	case path == "/my-applications":
		return a.MyApps(ctx, nil)
	case path == "/profile":
		return a.Profile(ctx, nil)
	case path == guard.LoginPath, path == "/register":
		a.open(path, nil)
		a.printf("Use 'login', 'google' or 'register'.\n")
		return nil
	}
	a.printf("Page not found: %s\n", location)
	return nil
}

func (a *App) Home(ctx context.Context, _ []string) error {
	h := pages.NewHome(a.deps)
	a.open("/", h)

	st, err := h.Load(ctx)
	if err != nil {
		return err
	}

	heading(a.out, "Explore Latest Visa Options")
	if st.Status == pages.StatusFailed {
		a.report(st.Err, "Could not load the latest visas.")
		return st.Err
	}
	if note := sourceNote(st.Source, st.CachedAt); note != "" {
		a.printf("%s\n", note)
	}
	if len(st.Data) == 0 {
		a.printf("No visas available yet.\n")
	}
	for _, v := range st.Data {
		renderVisaCard(a.out, v)
	}
	a.printf("See all visas with 'visas'.\n")

	heading(a.out, "Why Choose Us")
	for _, b := range pages.WhyChooseUs {
		a.printf("  * %s: %s\n", b.Title, b.Description)
	}
	heading(a.out, "How It Works")
	for i, b := range pages.HowItWorks {
		a.printf("  %d. %s: %s\n", i+1, b.Title, b.Description)
	}
	return nil
}

// Visas lists all visas; args name an optional visa type.
func (a *App) Visas(ctx context.Context, args []string) error {
	filter := models.AllTypes
	if len(args) > 0 {
		t, ok := matchVisaType(strings.Join(args, " "))
		if !ok {
			a.failure("Unknown visa type. Choose one of: All, " + strings.Join(models.VisaTypes, ", "))
			return errors.New("unknown visa type")
		}
		filter = t
	}

	l := pages.NewListing(a.deps)
	_ = l.SetFilter(filter)
	a.open("/visas", l)

	st, err := l.Load(ctx)
	if err != nil {
		return err
	}

	heading(a.out, "All Visas")
	if st.Status == pages.StatusFailed {
		a.report(st.Err, "Could not load visas.")
		return st.Err
	}
	if note := sourceNote(st.Source, st.CachedAt); note != "" {
		a.printf("%s\n", note)
	}
	visible := l.Visible()
	if len(visible) == 0 {
		a.printf("No visas found\n")
		return nil
	}
	for _, v := range visible {
		renderVisaCard(a.out, v)
	}
	a.printf("%s\n", l.Summary())
	return nil
}

// matchVisaType accepts "Work Visa", "work visa" or "work".
func matchVisaType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, models.AllTypes) {
		return models.AllTypes, true
	}
	for _, t := range models.VisaTypes {
		if strings.EqualFold(s, t) || strings.EqualFold(s+" Visa", t) {
			return t, true
		}
	}
	return "", false
}

func (a *App) Visa(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Usage: visa <id>\n")
		return errors.New("missing id")
	}
	id := args[0]
	location := "/visas/" + id
	if !a.enter(ctx, location) {
		return pages.ErrNotSignedIn
	}

	p := pages.NewDetails(a.deps, id)
	a.open(location, p)

	st, err := p.Load(ctx)
	if err != nil {
		return err
	}
	if st.Status == pages.StatusFailed || st.Data == nil {
		a.report(st.Err, "Could not load this visa.")
		return st.Err
	}
	if note := sourceNote(st.Source, st.CachedAt); note != "" {
		a.printf("%s\n", note)
	}
	a.printf("\n")
	renderVisaDetails(a.out, *st.Data)
	a.printf("Type 'apply' to apply for this visa.\n")
	return nil
}

// Apply runs the application form for the visa on screen.
func (a *App) Apply(ctx context.Context, _ []string) error {
	a.mu.Lock()
	p := a.details
	a.mu.Unlock()
	if p == nil {
		a.report(pages.ErrNotLoaded, "")
		return pages.ErrNotLoaded
	}
	if err := p.OpenApply(); err != nil {
		a.report(err, "")
		return err
	}
	defer p.CloseApply()

	a.printf("Apply for this visa (your email is taken from your account)\n")
	first, err := GetSimpleText(a.reader, "First name", a.out)
	if err != nil {
		return err
	}
	last, err := GetSimpleText(a.reader, "Last name", a.out)
	if err != nil {
		return err
	}

	if _, err := p.Apply(ctx, first, last); err != nil {
		a.report(err, pages.MsgApplicationFailed)
		return err
	}
	a.success(pages.MsgApplicationSubmitted)
	return nil
}
