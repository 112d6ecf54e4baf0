package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/promisetracker/linkwatch/internal/domain"
)

// registerTools registers all linkwatch MCP tools on the given server.
func registerTools(s *server.MCPServer, ctrl domain.ValidationControl) {
	// 1. linkwatch_run_now
	s.AddTool(
		mcplib.NewTool("linkwatch_run_now",
			mcplib.WithDescription("Runs a full link validation pass now and returns the result as JSON. Fails if a run is already in progress."),
		),
		handleRunNow(ctrl),
	)

	// 2. linkwatch_get_status
	s.AddTool(
		mcplib.NewTool("linkwatch_get_status",
			mcplib.WithDescription("Returns the freshness of the last successful validation run"),
		),
		handleGetStatus(ctrl),
	)

	// 3. linkwatch_get_latest_report
	s.AddTool(
		mcplib.NewTool("linkwatch_get_latest_report",
			mcplib.WithDescription("Returns the persisted result of the latest validation run"),
		),
		handleGetLatestReport(ctrl),
	)

	// 4. linkwatch_validate_source
	s.AddTool(
		mcplib.NewTool("linkwatch_validate_source",
			mcplib.WithDescription("Checks a single source URL on demand without recording a run"),
			mcplib.WithNumber("source_id",
				mcplib.Required(),
				mcplib.Description("Database id of the source to check"),
			),
		),
		handleValidateSource(ctrl),
	)
}

func handleRunNow(ctrl domain.ValidationControl) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		result, err := ctrl.RunNow(ctx)
		if err != nil {
			return errorResult(fmt.Sprintf("run rejected: %v", err)), nil
		}
		if !result.Succeeded() {
			return errorResult(fmt.Sprintf("validation failed: %s", result.Message)), nil
		}
		return jsonResult(result)
	}
}

func handleGetStatus(ctrl domain.ValidationControl) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(ctrl.Status())
	}
}

func handleGetLatestReport(ctrl domain.ValidationControl) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(ctrl.LatestReport())
	}
}

func handleValidateSource(ctrl domain.ValidationControl) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireFloat("source_id")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		id := int64(raw)
		if id <= 0 || float64(id) != raw {
			return errorResult(fmt.Sprintf("invalid source_id %v", raw)), nil
		}

		check, err := ctrl.ValidateSource(ctx, id)
		if errors.Is(err, domain.ErrSourceNotFound) {
			return errorResult(fmt.Sprintf("source %d not found", id)), nil
		}
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(check)
	}
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool error the client can show to the user.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
