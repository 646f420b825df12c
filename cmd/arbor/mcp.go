package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the tree to AI agents as MCP tools and the arbor://tree resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse (--sse): Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sse, _ := cmd.Flags().GetBool("sse")
			port, _ := cmd.Flags().GetInt("port")

			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			s, err := cli.Open(sigCtx, optionsFrom(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			srv := newMCPServer(s)

			if !sse {
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				s.Logger.Info("Starting arbor MCP Server (Stdio)")
				return srv.ServeStdio()
			}

			s.Logger.Info("Starting arbor MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil {
				return err
			}
			s.Logger.Info("MCP Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	return cmd
}

func newMCPServer(s *cli.Session) *mcp.Server {
	srv := mcp.NewServer(s.Engine)
	s.Logger.Debug("MCP tools registered", "tools", len(srv.MCPServer().ListTools()))
	return srv
}
