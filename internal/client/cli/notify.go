package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/forms"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
	"github.com/dmitrijs2005/borderease/internal/client/session"
)

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// success and failure are the one-line notifications after an action.
func (a *App) success(msg string) {
	a.printf("[ok] %s\n", msg)
}

func (a *App) failure(msg string) {
	a.printf("[error] %s\n", msg)
}

// report prints err for the user, using fallback for API failures.
func (a *App) report(err error, fallback string) {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		a.failure("Please fix the following:")
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.printf("  - %s: %s\n", k, strings.Join(ve.Fields[k], "; "))
		}
		return
	}
	a.failure(errorText(err, fallback))
}

func errorText(err error, fallback string) string {
	var ae *session.AuthError
	switch {
	case errors.As(err, &ae):
		return ae.Message
	case errors.Is(err, pages.ErrNotSignedIn), errors.Is(err, client.ErrUnauthorized):
		return "Please sign in to continue."
	case errors.Is(err, client.ErrForbidden):
		return "You can only change your own records."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, pages.ErrUnknownItem):
		return "No item with that id on this page."
	case errors.Is(err, pages.ErrNotLoaded):
		return "Open a visa first with 'visa <id>'."
	case errors.Is(err, pages.ErrBusy):
		return "Please wait for the current submission to finish."
	case fallback != "":
		return fallback
	}
	return session.Message(session.KindUnknown)
}
