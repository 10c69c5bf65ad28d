// Package services holds the visa API's business rules: ownership checks,
// validation and sanitising of the free-text fields clients submit.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/dbx"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// ValidationError lists the offending fields of a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// base carries what every service needs.
type base struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	policy *bluemonday.Policy
	now    func() time.Time
	newID  func() string
}

// Option customises a service, mostly for tests.
type Option func(*base)

func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

func WithIDs(newID func() string) Option {
	return func(b *base) { b.newID = newID }
}

func newBase(db *sql.DB, rm repomanager.RepositoryManager, opts []Option) base {
	b := base{
		db:     db,
		rm:     rm,
		policy: bluemonday.StrictPolicy(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// clean strips markup from user text and trims it.
func (b *base) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(b.policy.Sanitize(s)))
}

func (b *base) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// inTx runs fn inside a transaction when a database is configured and
// directly otherwise.
func (b *base) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, b.db, nil, fn)
}

// handle returns the database handle repositories should use outside a
// transaction; nil for the in-memory store.
func (b *base) handle() dbx.DBTX {
	if b.db == nil {
		return nil
	}
	return b.db
}

func requirePrincipal(p *auth.Principal) error {
	if p == nil || p.Email == "" {
		return common.ErrorUnauthorized
	}
	return nil
}

// owns reports whether p may act on records belonging to email.
func owns(p *auth.Principal, email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), p.Email)
}

func forbidden(what string) error {
	return fmt.Errorf("%w: %s belongs to another user", common.ErrorForbidden, what)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
