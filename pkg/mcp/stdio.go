package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// maxLineBytes caps a single request line. Exec and create payloads can
// carry long command strings, well past bufio's default 64KiB token.
const maxLineBytes = 10 * 1024 * 1024

// Run serves the MCP server over stdio: one JSON-RPC object per input
// line, one response envelope per output line. The HTTP status the
// dispatcher computes has no meaning on this transport and is dropped.
func (s *Server) Run(ctx context.Context) (err error) {
	err = s.serve(ctx, os.Stdin, os.Stdout)
	return err
}

// serve pumps newline-delimited requests from in to out until EOF.
func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) (err error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	s.logger.InfoContext(ctx, "MCP server started", slog.String("transport", "stdio"))

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		body, _ := s.Dispatch(ctx, line)

		_, writeErr := fmt.Fprintf(out, "%s\n", body)
		if writeErr != nil {
			err = fmt.Errorf("writing response: %w", writeErr)
			return err
		}
	}

	err = scanner.Err()
	if err != nil {
		err = fmt.Errorf("reading requests: %w", err)
		return err
	}

	return err
}
