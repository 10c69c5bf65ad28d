// Package identity defines the identity-provider capability the session
// store is built on: account creation, password and federated sign-in,
// sign-out, profile updates, ID tokens and a session-change feed.
//
// Implementations live in subpackages: firebase talks to Google Identity
// Toolkit, local is an in-process provider for development and tests.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// User is the provider's view of the signed-in account.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

type ChangeReason string

const (
	ReasonRestored       ChangeReason = "restored"
	ReasonSignedIn       ChangeReason = "signed-in"
	ReasonSignedOut      ChangeReason = "signed-out"
	ReasonProfileUpdated ChangeReason = "profile-updated"
)

// Change is one session transition observed at the provider. A nil User
// means nobody is signed in.
type Change struct {
	User   *User
	Reason ChangeReason
}

// Provider is implemented by identity backends.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	// SignInFederated runs the provider-hosted sign-in flow.
	SignInFederated(ctx context.Context) (*User, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, displayName, photoURL string) (*User, error)
	// IDToken returns the current user's token, refreshing it when stale or
	// when force is set. Returns ErrNoSession when nobody is signed in.
	IDToken(ctx context.Context, force bool) (string, error)
	// Current returns the provider's latest user and whether the initial
	// state has been resolved.
	Current() (*User, bool)
	// Observe delivers the current state once it is known, then every later
	// change, until ctx is done. The channel is closed afterwards.
	Observe(ctx context.Context) <-chan Change
}

// ErrNoSession is returned by IDToken and UpdateProfile when signed out.
var ErrNoSession = errors.New("no signed-in user")

// Code is a provider error code.
type Code string

const (
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeUserNotFound      Code = "auth/user-not-found"
	CodeWrongPassword     Code = "auth/wrong-password"
	CodeEmailInUse        Code = "auth/email-already-in-use"
	CodeWeakPassword      Code = "auth/weak-password"
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeTooManyRequests   Code = "auth/too-many-requests"
	CodeNetworkFailed     Code = "auth/network-request-failed"
	CodePopupClosed       Code = "auth/popup-closed-by-user"
	CodePopupCancelled    Code = "auth/cancelled-popup-request"
	CodeTokenExpired      Code = "auth/user-token-expired"
	CodeInternal          Code = "auth/internal-error"
)

// Error is a coded provider failure.
type Error struct {
	Code Code
	Err  error
}

func NewError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the provider code from err, or "" when err carries none.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
