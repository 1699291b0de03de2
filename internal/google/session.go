package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/meyannis/mcpgmail/internal/logging"
)

// AuthError reports that no valid credential could be obtained: the token is
// missing, the grant was revoked, or the single refresh attempt failed. The
// caller has to re-run the consent flow.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// refreshFunc exchanges an expired token for a fresh one. Overridable in
// tests; the default performs a single refresh round trip against the
// OAuth endpoint.
type refreshFunc func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)

// Session owns the OAuth credential and hands out authenticated Gmail
// service handles. It is explicitly passed to consumers rather than living
// in a process-wide singleton, so persistence can be injected.
type Session struct {
	mu        sync.Mutex
	conf      *oauth2.Config
	store     TokenStore
	refresh   refreshFunc
	onRefresh func(success bool)

	token *oauth2.Token
	svc   *gmail.Service
}

// NewSession creates a Session using conf for refresh/exchange and store for
// token persistence.
func NewSession(conf *oauth2.Config, store TokenStore) *Session {
	s := &Session{
		conf:  conf,
		store: store,
	}
	s.refresh = func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
		// TokenSource performs exactly one refresh round trip when handed
		// an expired token.
		return conf.TokenSource(ctx, tok).Token()
	}
	return s
}

// SetRefreshObserver registers a callback invoked after every refresh
// attempt with its outcome. Used to feed refresh metrics without coupling
// this package to the instrumentation layer.
func (s *Session) SetRefreshObserver(fn func(success bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

// HasToken reports whether a persisted token exists, without validating it.
func (s *Session) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil {
		return true
	}
	_, err := s.store.Load()
	return err == nil
}

// AuthURL returns the consent URL for the interactive bootstrap flow.
func (s *Session) AuthURL() string {
	return s.conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (s *Session) Exchange(ctx context.Context, code string) error {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return &AuthError{Reason: "authorization code exchange failed", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(tok); err != nil {
		return err
	}
	s.token = tok
	s.svc = nil
	return nil
}

// Service returns an authenticated Gmail service handle, refreshing the
// credential first if it has expired. The handle is cached and rebuilt only
// when the token changes.
func (s *Session) Service(ctx context.Context) (*gmail.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, refreshed, err := s.validTokenLocked(ctx)
	if err != nil {
		return nil, err
	}

	if s.svc != nil && !refreshed {
		return s.svc, nil
	}

	// A static token source keeps refresh decisions here instead of inside
	// the transport; the token is known valid for this handle's lifetime.
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// Token returns a valid OAuth token, performing at most one refresh.
func (s *Session) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, _, err := s.validTokenLocked(ctx)
	return tok, err
}

// validTokenLocked loads the token if needed and refreshes it once when
// expired. On refresh success the new token is persisted; on failure the
// previously persisted token is left untouched and an AuthError is returned.
func (s *Session) validTokenLocked(ctx context.Context) (tok *oauth2.Token, refreshed bool, err error) {
	if s.token == nil {
		stored, err := s.store.Load()
		if err != nil {
			if errors.Is(err, ErrNoToken) {
				return nil, false, &AuthError{Reason: "no token found, run the auth command to grant access"}
			}
			return nil, false, &AuthError{Reason: "failed to load token", Err: err}
		}
		s.token = stored
	}

	if s.token.Valid() {
		return s.token, false, nil
	}

	if s.token.RefreshToken == "" {
		return nil, false, &AuthError{Reason: "token expired and no refresh token available"}
	}

	fresh, err := s.refresh(ctx, s.token)
	if s.onRefresh != nil {
		s.onRefresh(err == nil)
	}
	if err != nil {
		return nil, false, &AuthError{Reason: "token refresh failed", Err: err}
	}

	if err := s.store.Save(fresh); err != nil {
		// The refreshed token is usable for this process even if it could
		// not be written back.
		slog.Warn("failed to persist refreshed token", "error", err)
	}
	slog.Debug("OAuth token refreshed",
		"access_token", logging.SanitizeToken(fresh.AccessToken),
		"expiry", fresh.Expiry)
	s.token = fresh
	return fresh, true, nil
}
