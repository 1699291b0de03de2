package google

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(path)

	expiry := time.Now().Add(time.Hour).Round(time.Second)
	tok := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}

	require.NoError(t, store.Save(tok))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "Bearer", got.TokenType)
	assert.Equal(t, "refresh", got.RefreshToken)
	assert.True(t, expiry.Equal(got.Expiry))
}

func TestFileTokenStoreMissing(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestFileTokenStoreInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store := NewFileTokenStore(path)
	_, err := store.Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoToken))
}

func TestFileTokenStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token.json")
	store := NewFileTokenStore(path)

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileTokenStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileTokenStore(path)

	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "first"}))
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "second"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got.AccessToken)
}
