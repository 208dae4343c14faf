package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"gmail-sender-stats-go/internal/config"
)

// NewGmailService builds an authenticated, read-only Gmail service from the
// installed-app OAuth flow: the client secret comes from the credentials
// file, the cached token from the token file. The oauth2 token source
// refreshes the access token transparently; the returned handle is safe to
// share across calls.
func NewGmailService(ctx context.Context, cfg *config.GmailConfig) (*gmail.Service, error) {
	oauthConfig, err := readOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := TokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no cached token at %s, run the get_token tool first: %w", cfg.TokenFile, err)
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return service, nil
}

// AuthCodeURL returns the URL a user must visit to authorize the application
func AuthCodeURL(credentialsFile string) (string, error) {
	oauthConfig, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return "", err
	}
	return oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline), nil
}

// ExchangeAndSave trades an authorization code for a token and persists it
// to the token file
func ExchangeAndSave(ctx context.Context, credentialsFile, tokenFile, authCode string) (*oauth2.Token, error) {
	oauthConfig, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := SaveToken(tokenFile, token); err != nil {
		return nil, err
	}
	return token, nil
}

// TokenFromFile reads a cached OAuth token
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return token, nil
}

// SaveToken persists an OAuth token for later runs
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

func readOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(secret, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}
	return oauthConfig, nil
}
