package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/rcliao/tag-hints/internal/mcp"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve hint tools over MCP stdio",
		Long:  "Run a Model Context Protocol server on stdin/stdout exposing record_hint, remove_hint and query_hints.",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	s, err := openSession(cmd)
	if err != nil {
		exitErr("open", err)
	}
	defer s.Close()

	s.logger.Info("serving hint tools", "db", s.cfg.DB, "mode", s.mode())
	srv := mcp.NewServer(s.hints, s.mode(), s.cfg.QueryLimit)
	if err := server.ServeStdio(srv.MCPServer(Version)); err != nil {
		exitErr("serve", err)
	}
}
