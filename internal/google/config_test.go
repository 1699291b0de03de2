package google

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientCredentials(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantID     string
		wantSecret string
		wantErr    bool
	}{
		{
			name:       "installed app",
			content:    `{"installed":{"client_id":"id-1","client_secret":"secret-1"}}`,
			wantID:     "id-1",
			wantSecret: "secret-1",
		},
		{
			name:       "web app",
			content:    `{"web":{"client_id":"id-2","client_secret":"secret-2"}}`,
			wantID:     "id-2",
			wantSecret: "secret-2",
		},
		{
			name:    "unexpected shape",
			content: `{"service_account":{"client_id":"x"}}`,
			wantErr: true,
		},
		{
			name:    "missing secret",
			content: `{"installed":{"client_id":"id-only"}}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			content: `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			id, secret, err := loadClientCredentials(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantSecret, secret)
		})
	}
}

func TestLoadClientCredentialsMissingFile(t *testing.T) {
	_, _, err := loadClientCredentials(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestNewOAuthConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")

	conf, err := NewOAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-id", conf.ClientID)
	assert.Equal(t, "env-secret", conf.ClientSecret)
	assert.Equal(t, Scopes(), conf.Scopes)
}

func TestNewOAuthConfigFromFile(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"file-id","client_secret":"file-secret"}}`), 0600))
	t.Setenv(EnvCredentialsPath, path)

	conf, err := NewOAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-id", conf.ClientID)
}

func TestPathDefaults(t *testing.T) {
	t.Setenv(EnvTokenPath, "")
	t.Setenv(EnvCredentialsPath, "")
	assert.Equal(t, DefaultTokenPath, TokenPath())
	assert.Equal(t, DefaultCredentialsPath, CredentialsPath())

	t.Setenv(EnvTokenPath, "/tmp/custom-token.json")
	assert.Equal(t, "/tmp/custom-token.json", TokenPath())
}
