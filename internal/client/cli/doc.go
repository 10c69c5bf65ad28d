// Package cli provides the interactive BorderEase command-line client.
//
// It wires configuration, local storage, the identity provider, the session
// store and the visa API, then runs a REPL whose commands map onto the
// portal's pages. Protected pages pass through the route guard; while the
// session is still resolving the REPL waits instead of redirecting.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
