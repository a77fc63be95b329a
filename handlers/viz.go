// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides the group_flow_graph tool for agents
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fichas/viz"
)

type GroupFlowInput struct {
	ID string `json:"id" jsonschema:"Record ID (required)"`
}

type GroupFlowOutput struct {
	RecordID  string `json:"record_id"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *RecordHandlers) GroupFlowGraph(ctx context.Context, _ *mcp.CallToolRequest, input GroupFlowInput) (*mcp.CallToolResult, GroupFlowOutput, error) {
	rec, dir, err := h.load(ctx, input.ID)
	if err != nil {
		return nil, GroupFlowOutput{}, err
	}

	entries, err := h.history.Entries(ctx, input.ID, 0)
	if err != nil {
		return nil, GroupFlowOutput{}, fmt.Errorf("failed to load history: %w", err)
	}

	ordered := viz.Chronological(entries)
	generator := viz.NewGraphGenerator(h.synthesizer(dir), dir)
	dot, err := generator.GenerateGroupFlow(ctx, h.catalog.Title(rec.Document, rec.ID), ordered)
	if err != nil {
		return nil, GroupFlowOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	nodes, edges := viz.FlowSize(ordered)
	return nil, GroupFlowOutput{
		RecordID:  input.ID,
		DOTSource: dot,
		NodeCount: nodes,
		EdgeCount: edges,
	}, nil
}
