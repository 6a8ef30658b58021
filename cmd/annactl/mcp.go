package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jjgarcianorway/anna-assistant-sub011/internal/mcp"
	"github.com/spf13/cobra"
)

// newMCPCmd builds the `annactl mcp` subcommand, which bridges Anna's
// query/status/get_health operations to any MCP-aware client over
// stdio, proxying every call through annad's unix socket.
func newMCPCmd(socketPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start a Model Context Protocol (MCP) server bridging to annad",
		Long: `Starts an MCP server over stdio exposing query, status, and
get_health as tools. Every tool call is proxied to annad over the unix
socket; this process holds no state of its own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(version, *socketPath)
			return srv.Start(ctx)
		},
	}
}
