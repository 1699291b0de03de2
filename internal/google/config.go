package google

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
)

// Environment variables consumed at startup.
const (
	EnvTokenPath       = "GMAIL_TOKEN_PATH"
	EnvCredentialsPath = "GMAIL_CREDENTIALS_PATH"
	EnvClientID        = "GOOGLE_CLIENT_ID"
	EnvClientSecret    = "GOOGLE_CLIENT_SECRET"
)

// Default file paths relative to the working directory.
const (
	DefaultTokenPath       = "token.json"
	DefaultCredentialsPath = "credentials.json"
)

// Out-of-band redirect for the copy/paste consent flow used by the auth
// subcommand.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// TokenPath returns the token file path from the environment or the default.
func TokenPath() string {
	if p := os.Getenv(EnvTokenPath); p != "" {
		return p
	}
	return DefaultTokenPath
}

// CredentialsPath returns the OAuth client credentials file path from the
// environment or the default.
func CredentialsPath() string {
	if p := os.Getenv(EnvCredentialsPath); p != "" {
		return p
	}
	return DefaultCredentialsPath
}

// clientCredentials mirrors the Google credentials.json shape for both
// "installed" and "web" application types.
type clientCredentials struct {
	Installed *clientEntry `json:"installed"`
	Web       *clientEntry `json:"web"`
}

type clientEntry struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// NewOAuthConfig builds the oauth2 configuration for the Gmail scopes.
// Client id and secret come from GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET when
// set, otherwise from the credentials file.
func NewOAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)

	if clientID == "" || clientSecret == "" {
		var err error
		clientID, clientSecret, err = loadClientCredentials(CredentialsPath())
		if err != nil {
			return nil, err
		}
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleauth.Endpoint,
		RedirectURL:  oobRedirectURL,
		Scopes:       Scopes(),
	}, nil
}

// loadClientCredentials reads client id and secret from a credentials.json
// file, accepting both "installed" and "web" application shapes.
func loadClientCredentials(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var creds clientCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", "", fmt.Errorf("invalid JSON in credentials file %s: %w", path, err)
	}

	entry := creds.Installed
	if entry == nil {
		entry = creds.Web
	}
	if entry == nil || entry.ClientID == "" || entry.ClientSecret == "" {
		return "", "", fmt.Errorf("unexpected credentials format in %s: need an %q or %q entry", path, "installed", "web")
	}

	return entry.ClientID, entry.ClientSecret, nil
}
