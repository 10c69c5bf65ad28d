package firebase

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"google.golang.org/api/googleapi"
)

// toolkit error messages look like "WEAK_PASSWORD : Password should be ..."
var messageCodes = []struct {
	prefix string
	code   identity.Code
}{
	{"EMAIL_EXISTS", identity.CodeEmailInUse},
	{"EMAIL_NOT_FOUND", identity.CodeUserNotFound},
	{"INVALID_PASSWORD", identity.CodeWrongPassword},
	{"INVALID_LOGIN_CREDENTIALS", identity.CodeInvalidCredential},
	{"USER_DISABLED", identity.CodeInvalidCredential},
	{"WEAK_PASSWORD", identity.CodeWeakPassword},
	{"INVALID_EMAIL", identity.CodeInvalidEmail},
	{"MISSING_EMAIL", identity.CodeInvalidEmail},
	{"TOO_MANY_ATTEMPTS_TRY_LATER", identity.CodeTooManyRequests},
	{"TOKEN_EXPIRED", identity.CodeTokenExpired},
	{"INVALID_ID_TOKEN", identity.CodeTokenExpired},
	{"INVALID_REFRESH_TOKEN", identity.CodeTokenExpired},
	{"USER_NOT_FOUND", identity.CodeTokenExpired},
	{"CREDENTIAL_TOO_OLD_LOGIN_AGAIN", identity.CodeTokenExpired},
}

func codeForMessage(msg string) identity.Code {
	msg = strings.TrimSpace(msg)
	for _, mc := range messageCodes {
		if strings.HasPrefix(msg, mc.prefix) {
			return mc.code
		}
	}
	return identity.CodeInternal
}

// mapError converts toolkit and transport failures to coded provider errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pe *identity.Error
	if errors.As(err, &pe) {
		return err
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		if ge.Code >= 500 {
			return identity.NewError(identity.CodeNetworkFailed, err)
		}
		return identity.NewError(codeForMessage(ge.Message), err)
	}

	if errors.Is(err, context.Canceled) {
		return identity.NewError(identity.CodeNetworkFailed, err)
	}

	// anything else never reached the service
	return identity.NewError(identity.CodeNetworkFailed, err)
}
