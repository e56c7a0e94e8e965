package mcp

import "encoding/json"

// Standard JSON-RPC 2.0 error codes used by the server.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// Request represents an incoming MCP JSON-RPC request. Params is kept raw
// until the target operation binds it to a typed parameter struct.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an MCP JSON-RPC response. Exactly one of Result or
// Error is set; ID always echoes the request (null when unknown).
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an MCP JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tool describes one callable operation in the manifest.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Schema declares the accepted parameters of a tool.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// newSuccessResponse creates a success envelope echoing the request id.
func newSuccessResponse(id interface{}, result interface{}) (response Response) {
	response = Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	return response
}

// newErrorResponse creates an error envelope echoing the request id.
func newErrorResponse(id interface{}, code int, message string) (response Response) {
	response = Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}

	return response
}
