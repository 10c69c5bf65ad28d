// Package client contains the client-side gateway to the visa API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the REST surface: visas, applications, user records and Ping.
//  2. A concrete HTTP implementation (see HTTPClient) that bounds every call
//     with a timeout, attaches the caller's identity token as a bearer
//     credential, refreshes the token once on 401 and replays the request,
//     and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrBadRequest, ErrLocalDataNotAvailable. Transport failures (refused
// connections, timeouts) are returned as *NetworkError, which also matches
// ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; the configured timeout caps every
// call, and a shorter caller deadline wins.
//
// See Also
//
//   - Interface:  Client, TokenSource
//   - HTTP impl:  HTTPClient
//   - DB helpers: InitDatabase, RunMigrations
package client
