package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// SSEHTTPServer serves the MCP SSE transport together with the health and
// metadata endpoints on a single address.
type SSEHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	healthChecker *HealthChecker
	httpServer    *http.Server
	addr          string
}

// NewSSEHTTPServer creates the HTTP server for the SSE transport.
func NewSSEHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, health *HealthChecker, addr string) *SSEHTTPServer {
	return &SSEHTTPServer{
		mcpServer:     mcpSrv,
		serverContext: sc,
		healthChecker: health,
		addr:          addr,
	}
}

// Start starts the server and blocks until it stops.
func (s *SSEHTTPServer) Start() error {
	sseServer := mcpserver.NewSSEServer(s.mcpServer,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/message"),
	)

	mux := http.NewServeMux()
	mux.Handle("/sse", s.instrument("/sse", sseServer))
	mux.Handle("/message", s.instrument("/message", sseServer))
	mux.Handle("/health", s.instrument("/health", s.healthChecker.HealthHandler()))
	mux.Handle("/", s.instrument("/", s.healthChecker.RootHandler()))

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting SSE server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *SSEHTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down SSE server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *SSEHTTPServer) Addr() string {
	return s.addr
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so SSE streaming keeps working
// through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrument wraps a handler with HTTP request metrics. The path label is
// fixed per route to keep metric cardinality bounded.
func (s *SSEHTTPServer) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := s.serverContext.Metrics()
		if metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}
