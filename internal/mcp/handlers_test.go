package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- getArgs / stringArg helpers ---

func TestGetArgs_NilArguments(t *testing.T) {
	req := mcp.CallToolRequest{}
	args := getArgs(req)
	assert.NotNil(t, args)
	assert.Empty(t, args)
}

func TestGetArgs_ValidMap(t *testing.T) {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{"key": "value"},
		},
	}
	args := getArgs(req)
	assert.Equal(t, "value", args["key"])
}

func TestGetArgs_WrongType(t *testing.T) {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: "not a map"},
	}
	assert.Empty(t, getArgs(req))
}

func TestStringArg_Present(t *testing.T) {
	args := map[string]interface{}{"name": "hello"}
	assert.Equal(t, "hello", stringArg(args, "name", "default"))
}

func TestStringArg_Missing(t *testing.T) {
	assert.Equal(t, "default", stringArg(map[string]interface{}{}, "name", "default"))
}

func TestStringArg_NilValue(t *testing.T) {
	args := map[string]interface{}{"name": nil}
	assert.Equal(t, "default", stringArg(args, "name", "default"))
}

func TestStringArg_EmptyString(t *testing.T) {
	args := map[string]interface{}{"name": ""}
	assert.Equal(t, "default", stringArg(args, "name", "default"))
}

func TestStringArg_WrongType(t *testing.T) {
	args := map[string]interface{}{"name": 42}
	assert.Equal(t, "default", stringArg(args, "name", "default"))
}

// --- newTextResult / errResult ---

func TestNewTextResult(t *testing.T) {
	result := newTextResult("hello world")
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hello world", tc.Text)
}

func TestErrResult(t *testing.T) {
	result := errResult("something failed")
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "something failed", tc.Text)
}

// --- reindent ---

func TestReindentProducesIndentedJSON(t *testing.T) {
	out, err := reindent(json.RawMessage(`{"a":1,"b":"two"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, `"a": 1`)
}

func TestReindentRejectsMalformedJSON(t *testing.T) {
	_, err := reindent(json.RawMessage(`not json`))
	assert.Error(t, err)
}

// --- Server creation ---

func TestNewServer(t *testing.T) {
	srv := NewServer("1.0.0-test", "/tmp/annad-test.sock")
	require.NotNil(t, srv)
	assert.NotNil(t, srv.mcpServer)
	assert.NotNil(t, srv.client)
}

// --- handleQuery / handleStatus / handleHealth without a live daemon ---

func TestHandleQueryMissingText(t *testing.T) {
	srv := NewServer("1.0.0-test", "/tmp/annad-test-missing.sock")
	req := mcp.CallToolRequest{}
	res, err := srv.handleQuery(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleStatusReportsDialFailure(t *testing.T) {
	srv := NewServer("1.0.0-test", "/tmp/annad-does-not-exist.sock")
	res, err := srv.handleStatus(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
