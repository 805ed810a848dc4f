package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const ProtocolVersion = "2025-03-26"

// ToolHandler is the boundary between protocol and business logic.
// CallTool never fails at the protocol level: tool failures come back as
// an error-flagged ToolResult.
type ToolHandler interface {
	ListTools() []ToolDefinition
	CallTool(ctx context.Context, name string, args Object) *ToolResult
}

// Server implements the MCP lifecycle over a line-oriented stream pair.
// Requests are handled one at a time in arrival order, so responses are
// written in the same order their requests were read.
type Server struct {
	transport   *Transport
	handler     ToolHandler
	logger      *slog.Logger
	info        EntityInfo
	state       ServerState
	initialized bool // diagnostics only; never gates a method
}

// NewServerWithIO creates a server reading requests from in and writing
// responses to out. Diagnostics go to logger, never to out.
func NewServerWithIO(handler ToolHandler, info EntityInfo, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Server{
		transport: NewTransport(in, out),
		handler:   handler,
		logger:    logger,
		info:      info,
		state:     StateRunning,
	}
}

func (s *Server) State() ServerState { return s.state }

// Run is the main loop. Reads lines until end of stream, dispatches each,
// and writes at most one response line per request. An oversized line is
// skipped with a parse error and the loop carries on.
// Returns nil on clean shutdown (EOF), error if the transport breaks.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("server starting", "name", s.info.Name, "version", s.info.Version)

	for {
		var resp *Response

		line, err := s.transport.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			s.state = StateShuttingDown
			s.logger.Info("input closed, shutting down")
			return nil
		case errors.Is(err, ErrLineTooLong):
			s.logger.Warn("dropping oversized request line", "limit", s.transport.maxLine)
			r := NewErrorResponse(nil, NewLineTooLong(s.transport.maxLine))
			resp = &r
		case err != nil:
			s.state = StateShuttingDown
			return fmt.Errorf("read request: %w", err)
		case len(bytes.TrimSpace(line)) == 0:
			continue
		default:
			resp = s.handleLine(ctx, line)
		}

		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(*resp); err != nil {
			s.state = StateShuttingDown
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("parse error", "err", err)
		// null ID: we couldn't parse the request, so we don't know the ID
		r := NewErrorResponse(nil, NewParseError("parse error: "+err.Error()))
		return &r
	}
	return s.dispatch(ctx, req)
}

// dispatch routes a request to its handler.
// Returns nil for notifications (no response needed).
func (s *Server) dispatch(ctx context.Context, req Request) *Response {
	s.logger.Debug("request", "method", req.Method, "notification", req.IsNotification())

	if req.IsNotification() {
		s.handleNotification(req)
		return nil
	}

	if !s.initialized && req.Method != "initialize" {
		s.logger.Debug("request before initialize", "method", req.Method)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return s.reply(req, struct{}{})
	case "tools/list":
		return s.reply(req, struct {
			Tools []ToolDefinition `json:"tools"`
		}{Tools: s.handler.ListTools()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "resources/list":
		return s.reply(req, struct {
			Resources []struct{} `json:"resources"`
		}{Resources: []struct{}{}})
	case "prompts/list":
		return s.reply(req, struct {
			Prompts []struct{} `json:"prompts"`
		}{Prompts: []struct{}{}})
	default:
		return s.fail(req, NewMethodNotFound(req.Method))
	}
}

// handleNotification processes messages with no ID (fire-and-forget, no response sent).
func (s *Server) handleNotification(req Request) {
	switch req.Method {
	case "notifications/initialized":
		s.initialized = true
	default:
		s.logger.Debug("ignoring notification", "method", req.Method)
	}
}

func (s *Server) handleInitialize(req Request) *Response {
	s.initialized = true
	if params, ok := req.Params.(Object); ok {
		if client, ok := params["clientInfo"].(Object); ok {
			s.logger.Info("client connected", "client", client["name"], "version", client["version"])
		}
	}

	return s.reply(req, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capabilities{
			Tools:     &struct{}{}, // marshals to {}: capability present, no config
			Resources: &struct{}{},
			Prompts:   &struct{}{},
		},
		ServerInfo: s.info,
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) *Response {
	if req.Params == nil {
		return s.fail(req, NewInvalidParams("missing params"))
	}
	params, ok := req.Params.(Object)
	if !ok {
		return s.fail(req, NewInvalidParams("params must be an object"))
	}

	rawName, ok := params["name"]
	if !ok {
		return s.fail(req, NewInvalidParams("missing required parameter 'name'"))
	}
	name, ok := rawName.(String)
	if !ok || name == "" {
		return s.fail(req, NewInvalidParams("parameter 'name' must be a non-empty string"))
	}

	args := Object{}
	if rawArgs, ok := params["arguments"]; ok {
		switch v := rawArgs.(type) {
		case Object:
			args = v
		case Null:
		default:
			return s.fail(req, NewInvalidParams("parameter 'arguments' must be an object"))
		}
	}

	result := s.handler.CallTool(ctx, string(name), args)
	if result == nil {
		result = ErrorResult("tool " + string(name) + " returned no result")
	}

	// Tool errors are execution errors, not protocol errors.
	// They go in result with isError:true; the tool ran but failed.
	if result.IsError {
		s.logger.Warn("tool call failed", "tool", string(name), "error", result.Text())
	} else {
		s.logger.Debug("tool call succeeded", "tool", string(name))
	}
	return s.reply(req, result)
}

func (s *Server) reply(req Request, result any) *Response {
	data, err := json.Marshal(result)
	if err != nil {
		return s.fail(req, NewInternalError(err.Error()))
	}
	r := NewResponse(req.ID, data)
	return &r
}

func (s *Server) fail(req Request, e *Error) *Response {
	r := NewErrorResponse(req.ID, e)
	return &r
}
