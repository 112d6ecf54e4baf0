package mcp

import (
	"context"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeControl struct {
	runErr error
	result *domain.RunResult
}

func (f fakeControl) RunNow(context.Context) (*domain.RunResult, error) { return f.result, f.runErr }

func (f fakeControl) Status() domain.StatusView {
	return domain.StatusView{Status: domain.StatusCurrent, Message: "Last validation was 5 minutes ago"}
}

func (f fakeControl) LatestReport() *domain.RunResult { return f.result }

func (f fakeControl) ValidateSource(_ context.Context, id int64) (*domain.SingleCheck, error) {
	if id != 7 {
		return nil, domain.ErrSourceNotFound
	}
	return &domain.SingleCheck{SourceID: 7, URL: "https://ok.gov/", IsValid: true, StatusCode: 200}, nil
}

func callTool(args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content)
	tc, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleRunNow_Busy(t *testing.T) {
	r, err := handleRunNow(fakeControl{runErr: domain.ErrRunInProgress})(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(t, r), "run already in progress")
}

func TestHandleRunNow_Success(t *testing.T) {
	ctrl := fakeControl{result: &domain.RunResult{
		Status:  domain.ResultSuccess,
		Summary: domain.Summary{ValidCount: 2, TotalCount: 2},
		Details: []domain.Detail{},
	}}
	r, err := handleRunNow(ctrl)(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.False(t, r.IsError)
	assert.Contains(t, resultText(t, r), `"valid_count": 2`)
}

func TestHandleGetStatus(t *testing.T) {
	r, err := handleGetStatus(fakeControl{})(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, r), `"status": "current"`)
}

func TestHandleValidateSource(t *testing.T) {
	h := handleValidateSource(fakeControl{})

	r, err := h(context.Background(), callTool(map[string]any{"source_id": float64(7)}))
	require.NoError(t, err)
	assert.False(t, r.IsError)
	assert.Contains(t, resultText(t, r), `"is_valid": true`)

	r, err = h(context.Background(), callTool(map[string]any{"source_id": float64(8)}))
	require.NoError(t, err)
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(t, r), "not found")

	r, err = h(context.Background(), callTool(map[string]any{"source_id": 1.5}))
	require.NoError(t, err)
	assert.True(t, r.IsError)

	r, err = h(context.Background(), callTool(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, r.IsError)
}

func TestJSONResource(t *testing.T) {
	h := jsonResource(latestReportURI, func() any { return domain.NoDataResult("No validation results available") })
	contents, err := h(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, latestReportURI, text.URI)
	assert.Contains(t, text.Text, `"status": "no_data"`)
}
