package mcp

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a JSON-RPC request identifier: either an integer or a string.
type ID struct {
	num   int64
	str   string
	isStr bool
}

func IntID(n int64) ID     { return ID{num: n} }
func StringID(s string) ID { return ID{str: s, isStr: true} }

// Int returns the integer form, if this is an integer id.
func (id ID) Int() (int64, bool) { return id.num, !id.isStr }

// Str returns the string form, if this is a string id.
func (id ID) Str() (string, bool) { return id.str, id.isStr }

func (id ID) String() string {
	if id.isStr {
		return strconv.Quote(id.str)
	}
	return strconv.FormatInt(id.num, 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	v, err := DecodeValue(data)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case Int:
		*id = IntID(int64(v))
	case String:
		*id = StringID(string(v))
	default:
		return fmt.Errorf("request id must be an integer or a string, got %s", KindOf(v))
	}
	return nil
}

// Request is a JSON-RPC 2.0 request or notification.
// ID is nil for notifications; Params is nil when absent.
type Request struct {
	JSONRPC string
	ID      *ID
	Method  string
	Params  Value
}

// IsNotification returns true if this message has no ID (notification).
func (r *Request) IsNotification() bool { return r.ID == nil }

// UnmarshalJSON requires string "jsonrpc" and "method" members. An explicit
// null id or params is treated the same as an absent one.
func (r *Request) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("request must be a JSON object: %w", err)
	}

	version, err := requiredString(fields, "jsonrpc")
	if err != nil {
		return err
	}
	method, err := requiredString(fields, "method")
	if err != nil {
		return err
	}

	req := Request{JSONRPC: version, Method: method}
	if raw, ok := fields["id"]; ok && string(raw) != "null" {
		var id ID
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		req.ID = &id
	}
	if raw, ok := fields["params"]; ok {
		params, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("invalid params: %w", err)
		}
		if _, isNull := params.(Null); !isNull {
			req.Params = params
		}
	}

	*r = req
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"jsonrpc": r.JSONRPC,
		"method":  r.Method,
	}
	if r.ID != nil {
		out["id"] = *r.ID
	}
	if r.Params != nil {
		out["params"] = r.Params
	}
	return json.Marshal(out)
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("missing required field %q", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || string(raw) == "null" {
		return "", fmt.Errorf("field %q must be a string", name)
	}
	return s, nil
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a success response echoing the request ID.
func NewResponse(id *ID, result json.RawMessage) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// NewErrorResponse creates an error response echoing the request ID.
func NewErrorResponse(id *ID, e *Error) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: e}
}

type ServerState int

const (
	StateRunning ServerState = iota
	StateShuttingDown
)

type EntityInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Capabilities struct {
	Tools     *struct{} `json:"tools,omitempty"`
	Resources *struct{} `json:"resources,omitempty"`
	Prompts   *struct{} `json:"prompts,omitempty"`
}

type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      EntityInfo   `json:"serverInfo"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the payload of a tools/call response. IsError is omitted
// entirely on success.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// TextResult wraps text in a successful tool result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

// ErrorResult wraps a failure message in an error-flagged tool result.
func ErrorResult(msg string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: msg}},
		IsError: true,
	}
}

// Text joins the text of every content block.
func (r *ToolResult) Text() string {
	var s string
	for _, c := range r.Content {
		s += c.Text
	}
	return s
}
