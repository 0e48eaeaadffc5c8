package middleware

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/feed/internal/models"
	"github.com/anonto42/nano-midea/feed/internal/repositories"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseResolver resolves Firebase ID tokens to local users, creating the
// local profile the first time a Firebase account is seen.
type FirebaseResolver struct {
	verifier IDTokenVerifier
	users    repositories.UserRepository
}

// NewFirebaseResolver creates a FirebaseResolver.
func NewFirebaseResolver(verifier IDTokenVerifier, users repositories.UserRepository) *FirebaseResolver {
	return &FirebaseResolver{verifier: verifier, users: users}
}

// ResolveViewer verifies idToken and returns the matching local user ID.
func (r *FirebaseResolver) ResolveViewer(ctx context.Context, idToken string) (uint, error) {
	token, err := r.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return 0, fmt.Errorf("invalid or expired ID token: %w", err)
	}

	user, err := r.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return 0, err
	}

	uid := token.UID
	newUser := &models.User{
		DisplayName: claimString(token, "name"),
		Handle:      "fb_" + uid,
		AvatarURL:   claimString(token, "picture"),
		FirebaseUID: &uid,
	}
	if email := claimString(token, "email"); email != "" {
		newUser.Email = email
	} else {
		newUser.Email = uid + "@firebase.local"
	}
	if err := r.users.CreateUser(ctx, newUser); err != nil {
		return 0, fmt.Errorf("provision firebase user: %w", err)
	}
	return newUser.ID, nil
}

func claimString(token *auth.Token, key string) string {
	if v, ok := token.Claims[key].(string); ok {
		return v
	}
	return ""
}
