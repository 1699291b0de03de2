package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, config Config) *Provider {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
	})

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	ctx := context.Background()
	metrics.RecordHTTPRequest(ctx, "GET", "/health", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/message", 500, 50*time.Millisecond)
}

func TestMetrics_RecordGmailOperation(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
	})

	metrics := provider.Metrics()

	// Should not panic
	ctx := context.Background()
	metrics.RecordGmailOperation(ctx, "messages.list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordGmailOperation(ctx, "drafts.send", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordTokenRefresh(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
	})

	metrics := provider.Metrics()

	// Should not panic
	ctx := context.Background()
	metrics.RecordTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordTokenRefresh(ctx, RefreshResultFailure)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
	})

	metrics := provider.Metrics()

	// Should not panic - account is ignored without detailed labels
	ctx := context.Background()
	metrics.RecordToolInvocation(ctx, "search_emails", StatusSuccess, "user@example.com", 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "send_email", StatusError, "", 500*time.Millisecond)
}

func TestMetrics_RecordToolInvocation_DetailedLabels(t *testing.T) {
	provider := newTestProvider(t, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
		DetailedLabels: true,
	})

	metrics := provider.Metrics()

	// Should not panic - account label included
	metrics.RecordToolInvocation(context.Background(), "search_emails", StatusSuccess, "user@example.com", 100*time.Millisecond)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	if provider.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying instruments
	metrics.RecordHTTPRequest(ctx, "GET", "/health", 200, 100*time.Millisecond)
	metrics.RecordGmailOperation(ctx, "messages.list", StatusSuccess, 200*time.Millisecond)
	metrics.RecordTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordToolInvocation(ctx, "test_tool", StatusSuccess, "", 100*time.Millisecond)

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown on disabled provider: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("OTEL_SERVICE_NAME", "")

	config := DefaultConfig()
	if config.Enabled {
		t.Error("Enabled = true with METRICS_ENABLED=false")
	}
	if config.ServiceName != "mcpgmail" {
		t.Errorf("ServiceName = %q, want mcpgmail", config.ServiceName)
	}
	if config.PrometheusEndpoint != "/metrics" {
		t.Errorf("PrometheusEndpoint = %q, want /metrics", config.PrometheusEndpoint)
	}
	if config.DetailedLabels {
		t.Error("DetailedLabels = true by default")
	}
}
