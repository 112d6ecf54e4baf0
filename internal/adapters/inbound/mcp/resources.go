package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/promisetracker/linkwatch/internal/domain"
)

const (
	latestReportURI = "linkwatch://report/latest"
	statusURI       = "linkwatch://status"
)

// registerResources registers all linkwatch MCP resources on the given server.
func registerResources(s *server.MCPServer, ctrl domain.ValidationControl) {
	// 1. linkwatch://report/latest - persisted run result
	s.AddResource(
		mcplib.NewResource(
			latestReportURI,
			"Latest Validation Report",
			mcplib.WithResourceDescription("Result of the most recent link validation run"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(latestReportURI, func() any { return ctrl.LatestReport() }),
	)

	// 2. linkwatch://status - freshness of the last successful run
	s.AddResource(
		mcplib.NewResource(
			statusURI,
			"Validation Status",
			mcplib.WithResourceDescription("Freshness of the last successful validation run"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(statusURI, func() any { return ctrl.Status() }),
	)
}

func jsonResource(uri string, load func() any) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(load(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", uri, err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
