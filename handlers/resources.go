// ABOUTME: MCP resource handlers for exposing records
// ABOUTME: Provides read-only JSON views of records, their history and the dashboard via fichas:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fichas/viz"
)

const resourceScheme = "fichas://"

// ReadResource handles fichas://records, fichas://records/{id},
// fichas://records/{id}/history and fichas://dashboard.
func (h *RecordHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch {
	case parts[0] == "dashboard" && len(parts) == 1:
		stats, err := viz.GenerateDashboardStats(ctx, h.db, h.display)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, stats)

	case parts[0] == "records" && len(parts) == 1:
		_, out, err := h.FindRecords(ctx, nil, FindRecordsInput{Limit: 1000})
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, out)

	case parts[0] == "records" && len(parts) == 2:
		_, out, err := h.DescribeRecord(ctx, nil, DescribeRecordInput{ID: parts[1]})
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return jsonResource(uri, out)

	case parts[0] == "records" && len(parts) == 3 && parts[2] == "history":
		_, out, err := h.RecordHistory(ctx, nil, RecordHistoryInput{ID: parts[1], Limit: 1000})
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return jsonResource(uri, out)

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
