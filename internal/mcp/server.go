// Package mcp exposes hint caches as Model Context Protocol tools so an
// assistant can record, remove and query hashtags over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rcliao/tag-hints/internal/hints"
	"github.com/rcliao/tag-hints/internal/model"
)

// Server serves the hint tools for every mode of one Manager.
type Server struct {
	hints       *hints.Manager
	defaultMode string
	queryLimit  int
}

// NewServer creates a Server. Tools without a mode argument use defaultMode.
func NewServer(manager *hints.Manager, defaultMode string, queryLimit int) *Server {
	return &Server{hints: manager, defaultMode: defaultMode, queryLimit: queryLimit}
}

// MCPServer builds the MCP server with all hint tools registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("tag-hints", version, server.WithToolCapabilities(false))

	modeArg := mcp.WithString("mode", mcp.Description("Hint namespace; defaults to the configured mode"))

	srv.AddTool(mcp.NewTool("record_hint",
		mcp.WithDescription("Record that a hashtag was just used so it ranks first in later suggestions."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The hashtag text as typed")),
		modeArg,
	), s.handleRecord)

	srv.AddTool(mcp.NewTool("remove_hint",
		mcp.WithDescription("Forget a hashtag. A leading '#' is ignored."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The hashtag to forget")),
		modeArg,
	), s.handleRemove)

	srv.AddTool(mcp.NewTool("query_hints",
		mcp.WithDescription("Suggest recently used hashtags starting with a prefix, most recent first."),
		mcp.WithString("prefix", mcp.Description("Typed prefix; empty lists the most recent hashtags")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions")),
		modeArg,
	), s.handleQuery)

	return srv
}

func (s *Server) cache(ctx context.Context, req mcp.CallToolRequest) (*hints.Cache, error) {
	c, err := s.hints.Cache(req.GetString("mode", s.defaultMode))
	if err != nil {
		return nil, err
	}
	if err := c.WaitReady(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Server) handleRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	c, err := s.cache(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hints unavailable: %v", err)), nil
	}

	c.RecordUsage(text)
	return jsonResult(model.Ack{OK: true, Mode: c.Mode(), Text: text})
}

func (s *Server) handleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	c, err := s.cache(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hints unavailable: %v", err)), nil
	}

	if err := c.Remove(ctx, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove hint: %v", err)), nil
	}
	return jsonResult(model.Ack{OK: true, Mode: c.Mode(), Text: text})
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	limit := req.GetInt("limit", s.queryLimit)

	c, err := s.cache(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hints unavailable: %v", err)), nil
	}

	found, err := c.Query(ctx, prefix, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query hints: %v", err)), nil
	}
	return jsonResult(model.QueryResult{Mode: c.Mode(), Prefix: prefix, Hints: found})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
