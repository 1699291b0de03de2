package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoToken      = "no token"
)

// HealthChecker provides the /health endpoint and the root metadata endpoint.
type HealthChecker struct {
	// ready indicates whether the server is ready to receive traffic
	ready atomic.Bool
	// serverContext provides access to dependencies for health checks
	serverContext *ServerContext
	// startTime tracks when the server started
	startTime time.Time
	version   string
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
		version:       version,
	}
	// Server starts as ready by default
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// HealthResponse is the JSON body of the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler returns the handler for the /health endpoint. A missing
// token degrades the credentials check but keeps the endpoint at 200; only
// readiness or shutdown problems turn the status non-ok.
func (h *HealthChecker) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if h.ready.Load() {
			checks["ready"] = healthStatusOK
		} else {
			checks["ready"] = healthStatusNotReady
			allOk = false
		}

		if h.isServerShuttingDown() {
			checks["shutdown"] = healthStatusShuttingDown
			allOk = false
		} else {
			checks["shutdown"] = healthStatusOK
		}

		if h.serverContext != nil && h.serverContext.Session() != nil {
			if h.serverContext.Session().HasToken() {
				checks["credentials"] = healthStatusOK
			} else {
				checks["credentials"] = healthStatusNoToken
			}
		}

		response := HealthResponse{
			Version: h.version,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			Checks:  checks,
		}

		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RootResponse is the JSON body of the root endpoint, describing the server
// and its endpoints to clients probing the base URL.
type RootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Transport string            `json:"transport"`
	Endpoints map[string]string `json:"endpoints"`
}

// RootHandler returns the handler for the / endpoint. Unknown paths get a
// 404 so the catch-all pattern doesn't swallow typos silently.
func (h *HealthChecker) RootHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		_ = json.NewEncoder(w).Encode(RootResponse{
			Name:      "mcpgmail",
			Version:   h.version,
			Transport: "sse",
			Endpoints: map[string]string{
				"sse":     "/sse",
				"message": "/message",
				"health":  "/health",
			},
		})
	})
}
