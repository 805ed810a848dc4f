package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTools implements ToolHandler for testing.
type stubTools struct {
	calls []string
	args  []Object
}

func (s *stubTools) ListTools() []ToolDefinition {
	return []ToolDefinition{{
		Name:        "echo",
		Description: "Echoes its text argument",
		InputSchema: ObjectSchema(map[string]Property{
			"text": {Type: "string", Description: "Text to echo"},
		}, "text"),
	}}
}

func (s *stubTools) CallTool(_ context.Context, name string, args Object) *ToolResult {
	s.calls = append(s.calls, name)
	s.args = append(s.args, args)
	if name != "echo" {
		return ErrorResult("unknown tool: " + name)
	}
	text, _ := args["text"].(String)
	return TextResult(string(text))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve runs the server over the given input lines and returns the raw output.
func serve(t *testing.T, tools ToolHandler, lines ...string) string {
	t.Helper()

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	srv := NewServerWithIO(tools, EntityInfo{Name: "reminders", Version: "test"}, in, &out, testLogger())
	require.NoError(t, srv.Run(context.Background()))
	assert.Equal(t, StateShuttingDown, srv.State())
	return out.String()
}

// responses splits raw server output into decoded response lines.
func responses(t *testing.T, raw string) []Response {
	t.Helper()

	var resps []Response
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		if line == "" {
			continue
		}
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp), "line %q", line)
		resps = append(resps, resp)
	}
	return resps
}

func toolResult(t *testing.T, resp Response) ToolResult {
	t.Helper()
	require.Nil(t, resp.Error)
	var result ToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	return result
}

func TestInitialize(t *testing.T) {
	out := serve(t, &stubTools{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`)

	resps := responses(t, out)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)
	assert.Equal(t, IntID(1), *resps[0].ID)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(resps[0].Result, &result))
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, "reminders", result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestNotificationIsSilent(t *testing.T) {
	out := serve(t, &stubTools{}, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Empty(t, out)
}

func TestUnknownMethodWithID(t *testing.T) {
	out := serve(t, &stubTools{}, `{"jsonrpc":"2.0","id":5,"method":"bogus"}`)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1)

	resps := responses(t, out)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, CodeMethodNotFound, resps[0].Error.Code)
	assert.Contains(t, resps[0].Error.Message, "bogus")
	assert.Equal(t, IntID(5), *resps[0].ID)
	assert.Nil(t, resps[0].Result)
}

func TestUnknownMethodWithoutID(t *testing.T) {
	out := serve(t, &stubTools{}, `{"jsonrpc":"2.0","method":"bogus"}`)
	assert.Empty(t, out)
}

func TestParseError(t *testing.T) {
	out := serve(t, &stubTools{}, `{not json`)

	assert.Contains(t, out, `"id":null`)
	resps := responses(t, out)
	require.Len(t, resps, 1)
	assert.Nil(t, resps[0].ID)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, CodeParseError, resps[0].Error.Code)
	assert.Contains(t, resps[0].Error.Message, "parse error")
}

func TestParseErrorDoesNotStopLoop(t *testing.T) {
	out := serve(t, &stubTools{},
		`[]`,
		`{"jsonrpc":"2.0","id":"x","method":"ping"}`,
		`{"jsonrpc":"2.0","id":{"a":1},"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`)

	resps := responses(t, out)
	require.Len(t, resps, 4)
	assert.Equal(t, CodeParseError, resps[0].Error.Code)
	assert.Equal(t, StringID("x"), *resps[1].ID)
	assert.JSONEq(t, `{}`, string(resps[1].Result))
	assert.Equal(t, CodeParseError, resps[2].Error.Code)
	assert.Equal(t, IntID(2), *resps[3].ID)
}

func TestEmptyLinesIgnored(t *testing.T) {
	out := serve(t, &stubTools{}, ``, `   `, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, ``)
	resps := responses(t, out)
	require.Len(t, resps, 1)
}

func TestMethodsAcceptedBeforeInitialize(t *testing.T) {
	out := serve(t, &stubTools{},
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"initialize","params":{}}`)

	resps := responses(t, out)
	require.Len(t, resps, 2)
	assert.Nil(t, resps[0].Error)
	assert.Nil(t, resps[1].Error)
}

func TestToolsList(t *testing.T) {
	out := serve(t, &stubTools{}, `{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{}}`)

	resps := responses(t, out)
	require.Len(t, resps, 1)

	var result struct {
		Tools []ToolDefinition `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resps[0].Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "echo", result.Tools[0].Name)
	assert.Equal(t, []string{"text"}, result.Tools[0].InputSchema.Required)
}

func TestEmptyResourceAndPromptLists(t *testing.T) {
	out := serve(t, &stubTools{},
		`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`)

	resps := responses(t, out)
	require.Len(t, resps, 2)
	assert.JSONEq(t, `{"resources":[]}`, string(resps[0].Result))
	assert.JSONEq(t, `{"prompts":[]}`, string(resps[1].Result))
}

func TestToolsCall(t *testing.T) {
	tools := &stubTools{}
	out := serve(t, tools, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hello"}}}`)

	resps := responses(t, out)
	require.Len(t, resps, 1)
	result := toolResult(t, resps[0])
	assert.False(t, result.IsError)
	assert.Equal(t, "hello", result.Text())
	assert.NotContains(t, out, "isError")
	assert.Equal(t, []string{"echo"}, tools.calls)
}

func TestToolsCallFailureIsNotProtocolError(t *testing.T) {
	out := serve(t, &stubTools{}, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"does_not_exist"}}`)

	resps := responses(t, out)
	require.Len(t, resps, 1)
	result := toolResult(t, resps[0])
	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "does_not_exist")
	assert.Contains(t, out, `"isError":true`)
}

func TestToolsCallMissingArgumentsIsEmptyObject(t *testing.T) {
	tools := &stubTools{}
	serve(t, tools,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":null}}`)

	require.Len(t, tools.args, 2)
	assert.Equal(t, Object{}, tools.args[0])
	assert.Equal(t, Object{}, tools.args[1])
}

func TestToolsCallInvalidParams(t *testing.T) {
	tests := map[string]string{
		"missing params":    `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`,
		"params not object": `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":[1]}`,
		"missing name":      `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`,
		"empty name":        `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":""}}`,
		"numeric name":      `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":3}}`,
		"arguments array":   `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":[]}}`,
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			tools := &stubTools{}
			resps := responses(t, serve(t, tools, line))
			require.Len(t, resps, 1)
			require.NotNil(t, resps[0].Error)
			assert.Equal(t, CodeInvalidParams, resps[0].Error.Code)
			assert.Empty(t, tools.calls)
		})
	}
}

func TestToolsCallNotificationDoesNotRun(t *testing.T) {
	tools := &stubTools{}
	out := serve(t, tools, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"echo"}}`)
	assert.Empty(t, out)
	assert.Empty(t, tools.calls)
}

func TestResponsesKeepRequestOrder(t *testing.T) {
	out := serve(t, &stubTools{},
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":"two","method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"nope"}`)

	resps := responses(t, out)
	require.Len(t, resps, 3)
	assert.Equal(t, IntID(1), *resps[0].ID)
	assert.Equal(t, StringID("two"), *resps[1].ID)
	assert.Equal(t, IntID(3), *resps[2].ID)
}

// flushRecorder counts writes and flushes to prove each response is flushed.
type flushRecorder struct {
	bytes.Buffer
	writes, flushes int
}

func (f *flushRecorder) Write(p []byte) (int, error) {
	f.writes++
	return f.Buffer.Write(p)
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

func TestEachResponseFlushed(t *testing.T) {
	out := &flushRecorder{}
	in := strings.NewReader("{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"ping\"}\n{\"jsonrpc\":\"2.0\",\"id\":2,\"method\":\"ping\"}\n")
	srv := NewServerWithIO(&stubTools{}, EntityInfo{Name: "reminders"}, in, out, testLogger())
	require.NoError(t, srv.Run(context.Background()))

	assert.Equal(t, 2, out.writes)
	assert.Equal(t, 2, out.flushes)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestWriteFailureStopsServer(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	srv := NewServerWithIO(&stubTools{}, EntityInfo{Name: "reminders"}, in, brokenWriter{}, testLogger())
	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe closed")
}

func TestOversizedLineIsSkipped(t *testing.T) {
	huge := `{"jsonrpc":"2.0","id":1,"method":"ping","params":{"pad":"` + strings.Repeat("x", maxLineSize) + `"}}`
	out := serve(t, &stubTools{},
		huge,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`)

	resps := responses(t, out)
	require.Len(t, resps, 2)

	assert.Nil(t, resps[0].ID)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, CodeParseError, resps[0].Error.Code)
	assert.Contains(t, resps[0].Error.Message, "exceeds")

	require.NotNil(t, resps[1].ID)
	assert.Equal(t, IntID(2), *resps[1].ID)
	assert.Nil(t, resps[1].Error)
}

func TestOversizedFinalLineWithoutNewline(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" + strings.Repeat("x", 64))
	var out bytes.Buffer
	srv := NewServerWithIO(&stubTools{}, EntityInfo{Name: "reminders"}, in, &out, testLogger())
	srv.transport.maxLine = 32
	require.NoError(t, srv.Run(context.Background()))

	resps := responses(t, out.String())
	require.Len(t, resps, 2)
	assert.Nil(t, resps[0].Error)
	require.NotNil(t, resps[1].Error)
	assert.Equal(t, CodeParseError, resps[1].Error.Code)
	assert.Contains(t, resps[1].Error.Message, "exceeds 32 bytes")
}

func TestReadLine(t *testing.T) {
	tr := NewTransport(strings.NewReader("short\r\n"+strings.Repeat("y", 20)+"\nlast"), io.Discard)
	tr.maxLine = 8

	line, err := tr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "short", string(line))

	_, err = tr.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)

	line, err = tr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "last", string(line))

	_, err = tr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}
