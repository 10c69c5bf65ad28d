package auth

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/jwtx"
)

// LocalVerifier accepts the HS256 tokens issued by the local development
// identity provider.
type LocalVerifier struct {
	secret []byte
}

func NewLocalVerifier(secret []byte) *LocalVerifier {
	return &LocalVerifier{secret: secret}
}

func (v *LocalVerifier) Verify(_ context.Context, idToken string) (*Principal, error) {
	if idToken == "" {
		return nil, ErrNoToken
	}
	claims, err := jwtx.ParseToken(idToken, v.secret)
	if err != nil {
		return nil, err
	}
	return &Principal{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
