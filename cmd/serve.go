package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meyannis/mcpgmail/internal/google"
	"github.com/meyannis/mcpgmail/internal/instrumentation"
	"github.com/meyannis/mcpgmail/internal/logging"
	"github.com/meyannis/mcpgmail/internal/server"
	"github.com/meyannis/mcpgmail/internal/tools/gmail_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		sseAddr        string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail tools
for AI assistants.

Supports two transport types:
  - stdio: Standard input/output (default)
  - SSE: Server-Sent Events over HTTP, enabled with --sse <host:port>

Credentials:
  The server needs a Google OAuth client, provided either via the
  GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or a credentials.json
  file (path configurable with GMAIL_CREDENTIALS_PATH). Run the auth
  command once to grant mailbox access and store a token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment fallbacks apply only when the flag was not set.
			if !cmd.Flags().Changed("debug") && os.Getenv("DEBUG") == "true" {
				debugMode = true
			}
			if !cmd.Flags().Changed("sse") {
				if port := os.Getenv("PORT"); port != "" {
					sseAddr = ":" + port
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				if v := os.Getenv("METRICS_ENABLED"); v != "" {
					if parsed, err := strconv.ParseBool(v); err == nil {
						metricsEnabled = parsed
					}
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}

			return runServe(sseAddr, debugMode, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging. Can also use DEBUG env var.")
	cmd.Flags().StringVar(&sseAddr, "sse", "", "Serve over SSE on this address (e.g., :8080). Can also use PORT env var. Default is stdio.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (SSE mode only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(sseAddr string, debugMode bool, metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr; in stdio mode stdout belongs to the MCP transport.
	logging.Setup(os.Stderr, debugMode)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if !metricsConfig.Enabled {
		instrConfig.Enabled = false
	}

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// The dedicated metrics port only makes sense alongside the SSE
	// transport; stdio sessions are short-lived and owned by a client.
	var metricsServer *server.MetricsServer
	if sseAddr != "" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	conf, err := google.NewOAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to load OAuth configuration: %w", err)
	}
	session := google.NewSession(conf, google.NewFileTokenStore(google.TokenPath()))

	serverContext := server.NewServerContext(shutdownCtx, session)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		session.SetRefreshObserver(func(success bool) {
			result := instrumentation.RefreshResultSuccess
			if !success {
				result = instrumentation.RefreshResultFailure
			}
			provider.Metrics().RecordTokenRefresh(shutdownCtx, result)
		})
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	if !session.HasToken() {
		slog.Warn("no stored token found, tools will return authorization instructions until the auth command is run",
			"token_path", google.TokenPath())
	}

	mcpSrv := mcpserver.NewMCPServer("mcpgmail", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := gmail_tools.RegisterGmailTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Gmail tools: %w", err)
	}

	if sseAddr == "" {
		return runStdioServer(mcpSrv)
	}
	return runSSEServer(shutdownCtx, mcpSrv, serverContext, sseAddr)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string) error {
	healthChecker := server.NewHealthChecker(serverContext, version)
	sseServer := server.NewSSEHTTPServer(mcpSrv, serverContext, healthChecker, addr)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := sseServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()
	healthChecker.SetReady(true)

	slog.Info("SSE server listening",
		"addr", addr,
		"sse_endpoint", "/sse",
		"message_endpoint", "/message",
		"health_endpoint", "/health")

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping SSE server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down SSE server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("SSE server stopped with error: %w", err)
		}
	}

	return nil
}
