// Package guard decides whether a route may be shown for a session.
package guard

import (
	"strings"

	"github.com/dmitrijs2005/borderease/internal/client/session"
)

const LoginPath = "/login"

// Outcome of a guard decision.
type Outcome int

const (
	// Pending means the session is still resolving; show a placeholder.
	Pending Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision carries the redirect target and the location to return to.
type Decision struct {
	Outcome Outcome
	To      string
	From    string
}

var protected = []string{
	"/visas/:id",
	"/add-visa",
	"/my-added-visas",
	"/my-applications",
	"/profile",
}

// Protected reports whether location needs a signed-in user.
func Protected(location string) bool {
	path := stripQuery(location)
	for _, pattern := range protected {
		if match(pattern, path) {
			return true
		}
	}
	return false
}

// Decide never redirects while the session is loading.
func Decide(s session.Session, location string) Decision {
	if !Protected(location) {
		return Decision{Outcome: Allow}
	}
	if s.Loading {
		return Decision{Outcome: Pending}
	}
	if s.Identity == nil {
		return Decision{Outcome: Redirect, To: LoginPath, From: location}
	}
	return Decision{Outcome: Allow}
}

// ReturnTo is where to go after a successful sign-in.
func ReturnTo(from string) string {
	if from == "" || stripQuery(from) == LoginPath {
		return "/"
	}
	return from
}

func stripQuery(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if len(location) > 1 {
		location = strings.TrimSuffix(location, "/")
	}
	return location
}

func match(pattern, path string) bool {
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
