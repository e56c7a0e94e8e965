package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mohanboddu/podman-mcp-server/pkg/metrics"
)

// Server is the JSON-RPC request dispatcher. It holds the static tool
// manifest and the operation dispatch table; it keeps no per-request
// state, so concurrent dispatches need no coordination.
type Server struct {
	tools    *PodmanTools
	handlers map[string]toolHandler
	manifest map[string]Tool
	logger   *slog.Logger
}

// NewServer creates a new MCP server backed by the given engine. The
// manifest and handler table are built once here and never mutated.
func NewServer(engine ContainerEngine, logger *slog.Logger) (result *Server) {
	tools := NewPodmanTools(engine, logger)

	result = &Server{
		tools:    tools,
		handlers: tools.handlers(),
		manifest: getToolManifest(),
		logger:   logger,
	}

	return result
}

// Dispatch decodes one raw JSON-RPC request body and returns the
// serialized response envelope plus the HTTP status to send it with.
// Only a body that fails to parse yields a non-200 status; every other
// outcome, including JSON-RPC level errors, is a 200.
func (s *Server) Dispatch(ctx context.Context, raw []byte) (body []byte, status int) {
	var request Request

	err := json.Unmarshal(raw, &request)
	if err != nil {
		// A type mismatch means the body parsed as JSON but an envelope
		// field carries the wrong type. That is a dispatch failure, not a
		// parse failure, so it answers 200 with -32603.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			s.logger.WarnContext(ctx, "malformed request envelope", slog.String("error", err.Error()))
			metrics.RPCErrorsTotal.WithLabelValues(strconv.Itoa(CodeInternalError)).Inc()

			body, _ = json.Marshal(newErrorResponse(requestID(raw), CodeInternalError, fmt.Sprintf("Internal error: %v", err)))
			return body, http.StatusOK
		}

		s.logger.WarnContext(ctx, "failed to parse request", slog.String("error", err.Error()))
		metrics.RPCErrorsTotal.WithLabelValues(strconv.Itoa(CodeParseError)).Inc()

		body, _ = json.Marshal(newErrorResponse(nil, CodeParseError, "Parse error"))
		return body, http.StatusBadRequest
	}

	// Envelope validation is by key presence. An empty method still routes
	// to the lookup and misses instead of being rejected as malformed.
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	_, hasJSONRPC := fields["jsonrpc"]
	_, hasMethod := fields["method"]

	if !hasJSONRPC || !hasMethod {
		metrics.RPCErrorsTotal.WithLabelValues(strconv.Itoa(CodeInvalidRequest)).Inc()

		body, _ = json.Marshal(newErrorResponse(request.ID, CodeInvalidRequest, "Invalid Request"))
		return body, http.StatusOK
	}

	response := s.handle(ctx, request)

	body, _ = json.Marshal(response)
	return body, http.StatusOK
}

// requestID recovers the id from a body whose envelope failed strict
// binding. The id member accepts any JSON value, so this decode only
// fails when the body itself is not an object.
func requestID(raw []byte) (id interface{}) {
	var envelope struct {
		ID interface{} `json:"id"`
	}

	err := json.Unmarshal(raw, &envelope)
	if err != nil {
		return nil
	}

	return envelope.ID
}

// handle routes a validated request to the discovery method or the
// matching tool.
func (s *Server) handle(ctx context.Context, request Request) (response Response) {
	metrics.RPCRequestsTotal.WithLabelValues(request.Method).Inc()

	if request.Method == methodToolsList {
		response = newSuccessResponse(request.ID, s.manifest)
		return response
	}

	handler, ok := s.handlers[request.Method]
	if !ok {
		s.logger.WarnContext(ctx, "method not found", slog.String("method", request.Method))
		metrics.RPCErrorsTotal.WithLabelValues(strconv.Itoa(CodeMethodNotFound)).Inc()

		response = newErrorResponse(request.ID, CodeMethodNotFound, "Method not found")
		return response
	}

	s.logger.InfoContext(ctx, "executing tool", slog.String("tool", request.Method))

	result, err := handler(ctx, request.Params)
	if err != nil {
		s.logger.ErrorContext(ctx, "tool dispatch failed",
			slog.String("tool", request.Method),
			slog.String("error", err.Error()))
		metrics.RPCErrorsTotal.WithLabelValues(strconv.Itoa(CodeInternalError)).Inc()
		metrics.ToolExecutionsTotal.WithLabelValues(request.Method, metrics.StatusError).Inc()

		response = newErrorResponse(request.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
		return response
	}

	metrics.ToolExecutionsTotal.WithLabelValues(request.Method, metrics.StatusSuccess).Inc()

	response = newSuccessResponse(request.ID, result)
	return response
}
