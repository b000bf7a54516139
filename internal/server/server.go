// Package server exposes the automation tools over the Model Context
// Protocol. Handlers are thin: decode params, call the agent, serialize the
// result.
package server

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/agent"
	"github.com/droidcli/droidcli/internal/version"
)

// Server wraps the MCP server around one agent.
type Server struct {
	agent *agent.Agent
	log   *zap.Logger
	mcp   *mcpserver.MCPServer
}

// Config holds MCP server configuration.
type Config struct {
	Transport string // "stdio" or "streamable-http"
	Port      int
}

// New creates an MCP server with all droidcli tools registered.
func New(a *agent.Agent, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		agent: a,
		log:   log,
		mcp:   mcpserver.NewMCPServer("droidcli", version.Version),
	}
	s.registerTools()
	return s
}

// Serve starts the server on the configured transport and blocks.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}
