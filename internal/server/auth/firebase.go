package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/dmitrijs2005/borderease/internal/common"
)

// tokenVerifier is the part of the Firebase auth client we use.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier checks Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier builds an Admin SDK app for projectID. With an empty
// credentialsFile application default credentials are used.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Principal, error) {
	if idToken == "" {
		return nil, ErrNoToken
	}
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if fbauth.IsIDTokenExpired(err) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	claim := func(name string) string {
		s, _ := tok.Claims[name].(string)
		return s
	}
	email := strings.ToLower(claim("email"))
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email", common.ErrInvalidToken)
	}
	return &Principal{
		UID:     tok.UID,
		Email:   email,
		Name:    claim("name"),
		Picture: claim("picture"),
	}, nil
}
