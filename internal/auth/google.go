// Package auth resolves the signed-in Google identity from stored OAuth
// credentials.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"todolist/internal/config"
	"todolist/internal/identity"
)

// Scopes are the OAuth scopes the application requests: the user's profile
// for the identity document, and database access for the task collection.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/firebase.database",
}

const (
	// revokeURL is Google's token revocation endpoint.
	revokeURL = "https://oauth2.googleapis.com/revoke"

	// authTimeout bounds profile lookup and revocation calls.
	authTimeout = 10 * time.Second
)

// GoogleAuthenticator resolves identities from the token stored by the
// login command.
type GoogleAuthenticator struct {
	cfg *config.Config
}

// NewGoogle creates a GoogleAuthenticator over the given config.
func NewGoogle(cfg *config.Config) *GoogleAuthenticator {
	return &GoogleAuthenticator{cfg: cfg}
}

// SignIn resolves the signed-in user's name and email from the stored
// token.
func (g *GoogleAuthenticator) SignIn(ctx context.Context) (identity.Identity, error) {
	httpClient, err := g.client(ctx)
	if err != nil {
		return identity.Identity{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return identity.Identity{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if info.Email == "" {
		return identity.Identity{}, fmt.Errorf("profile has no email address")
	}

	return identity.Identity{Name: info.Name, Email: info.Email}, nil
}

// SignOut revokes the stored token with the provider and deletes the token
// file. A missing token file counts as already signed out.
func (g *GoogleAuthenticator) SignOut(ctx context.Context) error {
	token, err := g.token()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	revoke := token.RefreshToken
	if revoke == "" {
		revoke = token.AccessToken
	}

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	form := url.Values{"token": {revoke}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token: status %d", resp.StatusCode)
	}

	if err := g.cfg.RemoveToken(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (g *GoogleAuthenticator) token() (*oauth2.Token, error) {
	data, err := os.ReadFile(g.cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

func (g *GoogleAuthenticator) client(ctx context.Context) (*http.Client, error) {
	clientJSON, err := os.ReadFile(g.cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	token, err := g.token()
	if err != nil {
		return nil, err
	}

	return oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token)), nil
}
