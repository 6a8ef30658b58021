package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/rpc"
	"github.com/mark3labs/mcp-go/mcp"
)

// callTimeout bounds every tool call's round trip over the RPC socket.
const callTimeout = 30 * time.Second

func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	text := stringArg(args, "text", "")
	if text == "" {
		return errResult("text is required"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var answer json.RawMessage
	if err := s.client.Call(ctx, rpc.MethodQuery, rpc.QueryArgs{Text: text}, &answer); err != nil {
		return errResult(fmt.Sprintf("query failed: %v", err)), nil
	}

	pretty, err := reindent(answer)
	if err != nil {
		return errResult(fmt.Sprintf("decode response failed: %v", err)), nil
	}
	return newTextResult(pretty), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var status json.RawMessage
	if err := s.client.Call(ctx, rpc.MethodStatus, nil, &status); err != nil {
		return errResult(fmt.Sprintf("status failed: %v", err)), nil
	}

	pretty, err := reindent(status)
	if err != nil {
		return errResult(fmt.Sprintf("decode response failed: %v", err)), nil
	}
	return newTextResult(pretty), nil
}

func (s *Server) handleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var summary json.RawMessage
	if err := s.client.Call(ctx, rpc.MethodHealth, nil, &summary); err != nil {
		return errResult(fmt.Sprintf("get_health failed: %v", err)), nil
	}

	pretty, err := reindent(summary)
	if err != nil {
		return errResult(fmt.Sprintf("decode response failed: %v", err)), nil
	}
	return newTextResult(pretty), nil
}

func reindent(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is returned as a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
