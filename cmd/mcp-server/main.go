package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohanboddu/podman-mcp-server/pkg/mcp"
	"github.com/mohanboddu/podman-mcp-server/pkg/metrics"
	"github.com/mohanboddu/podman-mcp-server/pkg/podman"
)

func main() {
	// Initialize structured logger. Logs go to stderr so the stdio
	// transport keeps stdout for JSON-RPC traffic.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
	}))

	slog.SetDefault(logger)

	// Load configuration from environment
	containerHost := getEnv("CONTAINER_HOST", "")
	listenAddr := getEnv("MCP_LISTEN_ADDR", "127.0.0.1:4000")
	transport := getEnv("MCP_TRANSPORT", "http")
	metricsAddr := getEnv("METRICS_ADDR", ":9090")

	logger.Info("starting Podman MCP Server",
		slog.String("transport", transport),
		slog.String("listen_addr", listenAddr))

	engine, err := podman.NewClient(containerHost, logger)
	if err != nil {
		logger.Error("failed to create engine client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := mcp.NewServer(engine, logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	// Start metrics server
	metricsServer := metrics.NewServer(metricsAddr, logger)

	go func() {
		metricsErr := metricsServer.Start(ctx)
		if metricsErr != nil {
			logger.ErrorContext(ctx, "metrics server error", slog.String("error", metricsErr.Error()))
		}
	}()

	switch transport {
	case "stdio":
		err = server.Run(ctx)
	default:
		err = server.RunHTTP(ctx, listenAddr)
	}

	if err != nil {
		logger.Error("MCP server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key string, defaultValue string) (result string) {
	value := os.Getenv(key)
	if value == "" {
		result = defaultValue
		return result
	}

	result = value
	return result
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to
// info.
func parseLogLevel(value string) (result slog.Level) {
	switch value {
	case "debug":
		result = slog.LevelDebug
	case "warn":
		result = slog.LevelWarn
	case "error":
		result = slog.LevelError
	default:
		result = slog.LevelInfo
	}

	return result
}
