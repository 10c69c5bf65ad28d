// Package auth verifies the bearer identity tokens sent by the client and
// carries the verified caller through request contexts.
package auth

import (
	"context"
	"errors"
)

// ErrNoToken is returned when a request carries no bearer token.
var ErrNoToken = errors.New("missing bearer token")

// Principal is the verified caller of a request.
type Principal struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier checks an ID token and returns its principal. Invalid or expired
// tokens yield common.ErrInvalidToken or common.ErrTokenExpired.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
