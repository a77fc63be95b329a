// ABOUTME: MCP prompt handlers for reusable record workflows
// ABOUTME: Builds record-summary and audit-review prompts from stored data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetPrompt generates the prompt message for the requested template.
func (h *RecordHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "record-summary":
		return h.recordSummaryPrompt(ctx, request.Params.Arguments)
	case "audit-review":
		return h.auditReviewPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *RecordHandlers) recordSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["record_id"]
	if !ok {
		return nil, fmt.Errorf("record_id is required")
	}

	_, rec, err := h.DescribeRecord(ctx, nil, DescribeRecordInput{ID: id})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString("Please summarize this record for a colleague:\n\n")
	fmt.Fprintf(&text, "Title: %s\nCollection: %s\nGroup: %s\n", rec.Record.Title, rec.Record.Collection, rec.Record.Group)
	for _, g := range rec.Groups {
		fmt.Fprintf(&text, "\n## %s\n", g.Name)
		for _, sub := range g.Subgroups {
			if len(g.Subgroups) > 1 {
				fmt.Fprintf(&text, "### %s\n", sub.Name)
			}
			for _, f := range sub.Fields {
				fmt.Fprintf(&text, "- %s: %s\n", f.Label, f.Value)
			}
		}
	}

	return userPrompt(fmt.Sprintf("Summary for record: %s", rec.Record.Title), text.String()), nil
}

func (h *RecordHandlers) auditReviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["record_id"]
	if !ok {
		return nil, fmt.Errorf("record_id is required")
	}

	_, hist, err := h.RecordHistory(ctx, nil, RecordHistoryInput{ID: id, Limit: 200})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	text.WriteString("Review the change history of this record. ")
	text.WriteString("Point out unusual group moves and who the record was shared with.\n\n")
	if len(hist.Entries) == 0 {
		text.WriteString("The record has no history.\n")
	}
	for _, e := range hist.Entries {
		fmt.Fprintf(&text, "- [%s] %s (by %s", e.ActionType, e.Narrative, e.Actor)
		if e.DisplayTimestamp != "" {
			fmt.Fprintf(&text, ", %s", e.DisplayTimestamp)
		}
		text.WriteString(")\n")
	}

	return userPrompt(fmt.Sprintf("Audit review for record %s", id), text.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
