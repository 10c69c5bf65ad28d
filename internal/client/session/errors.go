package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
)

// Kind classifies an authentication failure.
type Kind string

const (
	KindInvalidCredential Kind = "invalid-credential"
	KindUserNotFound      Kind = "user-not-found"
	KindWrongPassword     Kind = "wrong-password"
	KindEmailInUse        Kind = "email-in-use"
	KindWeakPassword      Kind = "weak-password"
	KindInvalidEmail      Kind = "invalid-email"
	KindRateLimited       Kind = "rate-limited"
	KindNetworkFailure    Kind = "network-failure"
	KindPopupClosed       Kind = "popup-closed"
	KindPopupCancelled    Kind = "popup-cancelled"
	KindNotSignedIn       Kind = "not-signed-in"
	KindUnknown           Kind = "unknown"
)

const defaultMessage = "An error occurred. Please try again."

var kindByCode = map[identity.Code]Kind{
	identity.CodeInvalidCredential: KindInvalidCredential,
	identity.CodeUserNotFound:      KindUserNotFound,
	identity.CodeWrongPassword:     KindWrongPassword,
	identity.CodeEmailInUse:        KindEmailInUse,
	identity.CodeWeakPassword:      KindWeakPassword,
	identity.CodeInvalidEmail:      KindInvalidEmail,
	identity.CodeTooManyRequests:   KindRateLimited,
	identity.CodeNetworkFailed:     KindNetworkFailure,
	identity.CodePopupClosed:       KindPopupClosed,
	identity.CodePopupCancelled:    KindPopupCancelled,
	identity.CodeTokenExpired:      KindNotSignedIn,
}

var messages = map[Kind]string{
	KindInvalidCredential: "Invalid email or password. Please check your credentials.",
	KindUserNotFound:      "No account found with this email.",
	KindWrongPassword:     "Incorrect password. Please try again.",
	KindEmailInUse:        "An account with this email already exists.",
	KindWeakPassword:      "Password should be at least 6 characters.",
	KindInvalidEmail:      "Please enter a valid email address.",
	KindRateLimited:       "Too many failed attempts. Please try again later.",
	KindNetworkFailure:    "Network error. Please check your connection.",
	KindPopupClosed:       "Sign-in popup was closed. Please try again.",
	KindPopupCancelled:    "Sign-in was cancelled. Please try again.",
	KindNotSignedIn:       "Your session has expired. Please sign in again.",
}

// AuthError is a sign-in/sign-up failure with a message fit for the user.
type AuthError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Message returns the user-facing text for k.
func Message(k Kind) string {
	if m, ok := messages[k]; ok {
		return m
	}
	return defaultMessage
}

// toAuthError classifies provider failures. Unknown failures map to
// KindUnknown with the generic message.
func toAuthError(err error) error {
	if err == nil {
		return nil
	}

	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}

	kind := KindUnknown
	switch {
	case errors.Is(err, identity.ErrNoSession):
		kind = KindNotSignedIn
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindNetworkFailure
	default:
		if k, ok := kindByCode[identity.CodeOf(err)]; ok {
			kind = k
		}
	}

	return &AuthError{Kind: kind, Message: Message(kind), Err: err}
}
