// Package server holds the shared runtime state of the Gmail MCP server:
// the authenticated session, the lazily built Gmail client, the health
// endpoints, and the HTTP servers for the SSE transport and the Prometheus
// metrics port.
package server
