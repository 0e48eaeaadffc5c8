// Package firebase connects the Firebase Admin SDK that verifies viewer ID tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config selects the Firebase project whose ID tokens are accepted.
type Config struct {
	CredentialsPath string
	// ProjectID overrides the project from the credentials file when set.
	ProjectID string
}

// NewAuthClient returns an Auth client for cfg. The service only verifies
// tokens with it and never writes to Firebase.
func NewAuthClient(ctx context.Context, cfg Config) (*auth.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials: %w", err)
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, appConfig, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return client, nil
}
