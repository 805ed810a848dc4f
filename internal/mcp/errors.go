package mcp

import "fmt"

// JSON-RPC error codes the server emits. Malformed request objects are
// reported as parse errors, so -32600 never appears on the wire.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is the error member of a response. Only protocol failures use it;
// a tool that ran and failed answers with an error-flagged ToolResult.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc %d: %s", e.Code, e.Message)
}

func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

// NewLineTooLong reports a request line that was dropped unread.
func NewLineTooLong(limit int) *Error {
	return NewParseError(fmt.Sprintf("parse error: request line exceeds %d bytes", limit))
}

func NewMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "method not found: " + method}
}

func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}
