// Package instrumentation provides OpenTelemetry metrics for the Gmail MCP
// server, exposed through a Prometheus exporter. It records tool invocations,
// Gmail API calls, OAuth token refreshes, and HTTP traffic.
package instrumentation
