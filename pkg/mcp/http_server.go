package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPServer wraps an MCP Server with HTTP transport: a single POST
// endpoint carrying one JSON-RPC object per request body.
type HTTPServer struct {
	server     *Server
	logger     *slog.Logger
	httpServer *http.Server
}

// NewHTTPServer creates a new HTTP server wrapping the MCP server.
func NewHTTPServer(mcpServer *Server, addr string, logger *slog.Logger) (result *HTTPServer) {
	result = &HTTPServer{
		server: mcpServer,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", result.handleHealth)
	mux.HandleFunc("/", result.handleRPC)

	result.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return result
}

// Start starts the HTTP server.
func (h *HTTPServer) Start(ctx context.Context) (err error) {
	h.logger.InfoContext(ctx, "starting MCP HTTP server", slog.String("addr", h.httpServer.Addr))

	err = h.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	err = nil
	return err
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPServer) Shutdown(ctx context.Context) (err error) {
	h.logger.InfoContext(ctx, "shutting down MCP HTTP server")

	err = h.httpServer.Shutdown(ctx)
	return err
}

// handleHealth returns server health status.
func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte(`{"status":"healthy","service":"podman-mcp"}`))
}

// handleRPC handles one JSON-RPC request. The error/success distinction
// lives inside the envelope; the only non-200 statuses this endpoint
// produces are 405 for non-POST verbs and 400 for unparseable bodies.
func (h *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte("MCP Server for Podman. Please use POST with a JSON-RPC payload.\n"))
		return
	}

	requestID := uuid.New().String()
	logger := h.logger.With(slog.String("request_id", requestID))

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read request body", slog.String("error", err.Error()))
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	logger.Info("received MCP request", slog.Int("body_bytes", len(raw)))

	body, status := h.server.Dispatch(r.Context(), raw)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(body)
	if err != nil {
		logger.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// RunHTTP starts the MCP server with HTTP transport and blocks until
// the context is cancelled or the listener fails.
func (s *Server) RunHTTP(ctx context.Context, addr string) (err error) {
	httpServer := NewHTTPServer(s, addr, s.logger)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err = httpServer.Start(ctx)
	return err
}
