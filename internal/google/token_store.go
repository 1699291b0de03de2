package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// ErrNoToken indicates that no token has been persisted yet. The user has to
// run the interactive consent flow first.
var ErrNoToken = errors.New("no OAuth token stored")

// TokenStore loads and saves the OAuth token. Persistence is
// last-writer-wins: refreshes are infrequent and the process model is
// single-instance, so no cross-process locking is attempted.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(tok *oauth2.Token) error
}

// FileTokenStore persists the token as JSON in the provider-defined
// oauth2.Token shape.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the persisted token. Returns ErrNoToken when the file does not
// exist.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", s.path, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("invalid JSON in token file %s: %w", s.path, err)
	}
	return tok, nil
}

// Save writes the token with owner-only permissions, creating the parent
// directory if needed.
func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.path, err)
	}
	return nil
}
