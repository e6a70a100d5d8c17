package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

var ErrInvalidToken = errors.New("invalid id token")

// TokenVerifier resolves a bearer token to an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return None, ErrInvalidToken
	}

	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return None, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid := strings.TrimSpace(token.UID)
	if uid == "" {
		return None, ErrInvalidToken
	}

	id := Identity{UID: uid}
	if raw, ok := token.Claims["email"]; ok {
		if email, ok := raw.(string); ok {
			id.Email = strings.TrimSpace(email)
		}
	}
	return id, nil
}
