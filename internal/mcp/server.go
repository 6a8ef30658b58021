// Package mcp exposes Anna's query/status/get_health operations as
// MCP tools over stdio, so any MCP-aware client (editor, agent) can
// talk to the daemon the same way annactl does: over the unix-socket
// RPC boundary, never by importing the domain packages directly.
package mcp

import (
	"context"
	"os"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/rpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server instance and the RPC client it proxies
// tool calls through.
type Server struct {
	mcpServer *server.MCPServer
	client    *rpc.Client
}

// NewServer creates a new MCP server with registered tools, dialing
// annad over socketPath for every tool invocation.
func NewServer(version, socketPath string) *Server {
	s := server.NewMCPServer("anna", version, server.WithLogging())

	srv := &Server{
		mcpServer: s,
		client:    rpc.NewClient(socketPath),
	}
	srv.registerTools()
	return srv
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools adds query, status, and get_health to the server.
func (s *Server) registerTools() {
	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Ask Anna a natural-language IT question (e.g. 'how much RAM is free', 'restart nginx'). Returns the resolved tier, the validated command, and whether confirmation is required before any mutation runs."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The question or instruction, in plain English."),
		),
	)
	s.mcpServer.AddTool(queryTool, s.handleQuery)

	statusTool := mcp.NewTool("status",
		mcp.WithDescription("Return Anna's running counters: confirmed/rolled-back/cancelled mutation outcomes and the episodic XP/level summary."),
	)
	s.mcpServer.AddTool(statusTool, s.handleStatus)

	healthTool := mcp.NewTool("get_health",
		mcp.WithDescription("Capture a fresh snapshot and return the relevant-only health summary: critical issues, warnings, and what changed since the last snapshot. Silent when the system is healthy."),
	)
	s.mcpServer.AddTool(healthTool, s.handleHealth)
}
