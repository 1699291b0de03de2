package server

import (
	"context"
	"sync"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/meyannis/mcpgmail/internal/gmail"
	"github.com/meyannis/mcpgmail/internal/google"
	"github.com/meyannis/mcpgmail/internal/instrumentation"
)

// ServerContext holds the shared state of the MCP server.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *google.Session

	mu       sync.RWMutex
	client   *gmail.Client
	svc      *gmailapi.Service // service handle the cached client was built on
	account  string
	metrics  *instrumentation.Metrics
	shutdown bool
}

// NewServerContext creates a server context around an authenticated session.
// The Gmail client is built lazily on first use so the server can start
// before any token exists.
func NewServerContext(ctx context.Context, session *google.Session) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		session: session,
	}
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Session returns the credential session.
func (sc *ServerContext) Session() *google.Session {
	return sc.session
}

// GmailClient returns the Gmail client, building or rebuilding it when the
// session's service handle changed after a token refresh.
func (sc *ServerContext) GmailClient(ctx context.Context) (*gmail.Client, error) {
	svc, err := sc.session.Service(ctx)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.client == nil || sc.svc != svc {
		client := gmail.NewClient(svc)
		if m := sc.metrics; m != nil {
			client.SetObserver(func(operation string, err error, duration time.Duration) {
				status := instrumentation.StatusSuccess
				if err != nil {
					status = instrumentation.StatusError
				}
				m.RecordGmailOperation(sc.ctx, operation, status, duration)
			})
		}
		sc.client = client
		sc.svc = svc
	}
	return sc.client, nil
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAccount records the authenticated account's email address once known.
func (sc *ServerContext) SetAccount(email string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.account = email
}

// Account returns the authenticated account's email address, or empty when
// not yet known.
func (sc *ServerContext) Account() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.account
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
