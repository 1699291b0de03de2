package google

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// memoryStore is a TokenStore that records saves, for exercising the refresh
// contract without touching disk.
type memoryStore struct {
	token   *oauth2.Token
	loadErr error
	saves   int
}

func (m *memoryStore) Load() (*oauth2.Token, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.token == nil {
		return nil, ErrNoToken
	}
	return m.token, nil
}

func (m *memoryStore) Save(tok *oauth2.Token) error {
	m.token = tok
	m.saves++
	return nil
}

func testConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       Scopes(),
	}
}

func validToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func expiredToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}
}

func TestSessionTokenMissing(t *testing.T) {
	s := NewSession(testConfig(), &memoryStore{})

	_, err := s.Token(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err), "missing token should be an AuthError")
}

func TestSessionTokenValid(t *testing.T) {
	store := &memoryStore{token: validToken()}
	s := NewSession(testConfig(), store)
	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		t.Fatal("refresh must not be called for a valid token")
		return nil, nil
	}

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Zero(t, store.saves, "a valid token must not be rewritten")
}

func TestSessionRefreshSuccessPersists(t *testing.T) {
	store := &memoryStore{token: expiredToken()}
	s := NewSession(testConfig(), store)

	newExpiry := time.Now().Add(time.Hour)
	refreshCalls := 0
	s.refresh = func(_ context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
		refreshCalls++
		assert.Equal(t, "refresh", tok.RefreshToken)
		return &oauth2.Token{
			AccessToken:  "fresh",
			RefreshToken: "refresh",
			Expiry:       newExpiry,
		}, nil
	}

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, newExpiry, tok.Expiry)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 1, store.saves, "refreshed token must be persisted")
	assert.Equal(t, "fresh", store.token.AccessToken)
}

func TestSessionRefreshFailure(t *testing.T) {
	stale := expiredToken()
	store := &memoryStore{token: stale}
	s := NewSession(testConfig(), store)

	refreshCalls := 0
	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		refreshCalls++
		return nil, errors.New("invalid_grant")
	}

	_, err := s.Token(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "token refresh failed")
	assert.Equal(t, 1, refreshCalls, "exactly one refresh attempt")
	assert.Zero(t, store.saves, "persisted token must be left untouched on refresh failure")
	assert.Equal(t, "stale", store.token.AccessToken)
}

func TestSessionRefreshWithoutRefreshToken(t *testing.T) {
	store := &memoryStore{token: &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}}
	s := NewSession(testConfig(), store)
	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		t.Fatal("refresh must not be attempted without a refresh token")
		return nil, nil
	}

	_, err := s.Token(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestSessionRefreshObserver(t *testing.T) {
	store := &memoryStore{token: expiredToken()}
	s := NewSession(testConfig(), store)
	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		return nil, errors.New("invalid_grant")
	}

	var results []bool
	s.SetRefreshObserver(func(success bool) {
		results = append(results, success)
	})

	_, err := s.Token(context.Background())
	require.Error(t, err)
	require.Equal(t, []bool{false}, results)

	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		return validToken(), nil
	}

	_, err = s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, results)
}

func TestSessionServiceCachesHandle(t *testing.T) {
	store := &memoryStore{token: validToken()}
	s := NewSession(testConfig(), store)

	svc1, err := s.Service(context.Background())
	require.NoError(t, err)
	svc2, err := s.Service(context.Background())
	require.NoError(t, err)
	assert.Same(t, svc1, svc2, "handle should be cached while the token stays valid")
}

func TestSessionServiceRebuildsAfterRefresh(t *testing.T) {
	store := &memoryStore{token: expiredToken()}
	s := NewSession(testConfig(), store)
	s.refresh = func(context.Context, *oauth2.Token) (*oauth2.Token, error) {
		return validToken(), nil
	}

	svc1, err := s.Service(context.Background())
	require.NoError(t, err)
	require.NotNil(t, svc1)

	// Token is now valid, so the same handle is reused.
	svc2, err := s.Service(context.Background())
	require.NoError(t, err)
	assert.Same(t, svc1, svc2)
}

func TestHasToken(t *testing.T) {
	s := NewSession(testConfig(), &memoryStore{})
	assert.False(t, s.HasToken())

	s = NewSession(testConfig(), &memoryStore{token: expiredToken()})
	assert.True(t, s.HasToken(), "HasToken does not validate expiry")
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&AuthError{Reason: "x"}))
	assert.False(t, IsAuthError(errors.New("other")))
	assert.False(t, IsAuthError(nil))
}
