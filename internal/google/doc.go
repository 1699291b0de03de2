// Package google implements the OAuth credential lifecycle for the Gmail API.
//
// A Session owns the OAuth token: it loads it from a TokenStore, refreshes it
// exactly once when expired (persisting the refreshed token on success), and
// produces an authenticated Gmail service handle. All credential failures are
// reported as *AuthError so callers can tell the user to re-authenticate.
package google
