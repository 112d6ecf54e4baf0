package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/promisetracker/linkwatch/internal/domain"
)

// NewLinkwatchMCPServer creates an MCP server exposing the link validation
// control surface as tools and resources.
func NewLinkwatchMCPServer(ctrl domain.ValidationControl, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"linkwatch",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, ctrl)
	registerResources(s, ctrl)

	return s
}
