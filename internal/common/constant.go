// Package common contains shared constants and sentinel errors used across
// BorderEase components.
package common

const (
	// AuthorizationHeader carries the identity token on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token inside AuthorizationHeader.
	BearerPrefix = "Bearer "

	// ThemePreferenceKey is the local preference holding "light" or "dark".
	ThemePreferenceKey = "borderease-theme"
)
