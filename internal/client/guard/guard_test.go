package guard

import (
	"testing"

	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func TestProtected(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"/", false},
		{"/visas", false},
		{"/visas?type=Work+Visa", false},
		{"/login", false},
		{"/register", false},
		{"/visas/abc", true},
		{"/visas/abc/", true},
		{"/visas/", false},
		{"/visas/abc/extra", false},
		{"/add-visa", true},
		{"/my-added-visas", true},
		{"/my-applications?search=jap", true},
		{"/profile", true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, Protected(tt.location))
		})
	}
}

func TestDecide(t *testing.T) {
	signedIn := &session.Identity{Email: "a@b.com"}

	tests := []struct {
		name     string
		session  session.Session
		location string
		want     Decision
	}{
		{
			name:     "loading never redirects",
			session:  session.Session{Loading: true},
			location: "/my-applications",
			want:     Decision{Outcome: Pending},
		},
		{
			name:     "loading with stale identity still pending",
			session:  session.Session{Loading: true, Identity: signedIn},
			location: "/add-visa",
			want:     Decision{Outcome: Pending},
		},
		{
			name:     "signed out redirects with origin",
			session:  session.Session{},
			location: "/visas/42",
			want:     Decision{Outcome: Redirect, To: "/login", From: "/visas/42"},
		},
		{
			name:     "signed in allowed",
			session:  session.Session{Identity: signedIn},
			location: "/my-added-visas",
			want:     Decision{Outcome: Allow},
		},
		{
			name:     "public route allowed while loading",
			session:  session.Session{Loading: true},
			location: "/visas",
			want:     Decision{Outcome: Allow},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.session, tt.location))
		})
	}
}

func TestReturnTo(t *testing.T) {
	assert.Equal(t, "/", ReturnTo(""))
	assert.Equal(t, "/", ReturnTo("/login"))
	assert.Equal(t, "/visas/7", ReturnTo("/visas/7"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect", Redirect.String())
}
