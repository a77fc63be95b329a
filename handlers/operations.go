// ABOUTME: MCP tools that change a record and log the change
// ABOUTME: Implements assign_group, share_record and set_permission
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

type AuditOutput struct {
	RecordID string                `json:"record_id"`
	Entry    models.AuditViewModel `json:"entry"`
}

type AssignGroupInput struct {
	ID      string `json:"id" jsonschema:"Record ID (required)"`
	GroupID string `json:"group_id,omitempty" jsonschema:"Target group ID; empty removes the record from its group"`
	Actor   string `json:"actor,omitempty" jsonschema:"Name of the person making the change"`
}

func (h *RecordHandlers) AssignGroup(ctx context.Context, _ *mcp.CallToolRequest, input AssignGroupInput) (*mcp.CallToolResult, AuditOutput, error) {
	if input.ID == "" {
		return nil, AuditOutput{}, fmt.Errorf("id is required")
	}

	entry, err := db.AssignGroup(ctx, h.db, input.ID, input.GroupID, input.Actor)
	if err != nil {
		return nil, AuditOutput{}, fmt.Errorf("failed to assign group: %w", err)
	}
	return h.audit(ctx, input.ID, entry)
}

type ShareRecordInput struct {
	ID         string `json:"id" jsonschema:"Record ID (required)"`
	SharedWith string `json:"shared_with" jsonschema:"Person or team the record is shared with (required)"`
	Permission string `json:"permission,omitempty" jsonschema:"Granted permission, e.g. read or edit"`
	Actor      string `json:"actor,omitempty" jsonschema:"Name of the person sharing"`
}

func (h *RecordHandlers) ShareRecord(ctx context.Context, _ *mcp.CallToolRequest, input ShareRecordInput) (*mcp.CallToolResult, AuditOutput, error) {
	if input.ID == "" {
		return nil, AuditOutput{}, fmt.Errorf("id is required")
	}

	entry, err := db.ShareRecord(ctx, h.db, input.ID, input.SharedWith, input.Permission, input.Actor)
	if err != nil {
		return nil, AuditOutput{}, fmt.Errorf("failed to share record: %w", err)
	}
	return h.audit(ctx, input.ID, entry)
}

type SetPermissionInput struct {
	ID         string `json:"id" jsonschema:"Record ID (required)"`
	Permission string `json:"permission,omitempty" jsonschema:"New permission level"`
	Actor      string `json:"actor,omitempty" jsonschema:"Name of the person making the change"`
}

func (h *RecordHandlers) SetPermission(ctx context.Context, _ *mcp.CallToolRequest, input SetPermissionInput) (*mcp.CallToolResult, AuditOutput, error) {
	if input.ID == "" {
		return nil, AuditOutput{}, fmt.Errorf("id is required")
	}

	entry, err := db.SetPermission(ctx, h.db, input.ID, input.Permission, input.Actor)
	if err != nil {
		return nil, AuditOutput{}, fmt.Errorf("failed to set permission: %w", err)
	}
	return h.audit(ctx, input.ID, entry)
}

// audit renders the entry just written so callers see the same narrative
// the history shows.
func (h *RecordHandlers) audit(ctx context.Context, recordID string, entry models.Record) (*mcp.CallToolResult, AuditOutput, error) {
	dir, err := h.groups.Directory(ctx)
	if err != nil {
		return nil, AuditOutput{}, fmt.Errorf("failed to load groups: %w", err)
	}

	view := h.synthesizer(dir).View(provenance.ParseEntry(entry))
	return nil, AuditOutput{RecordID: recordID, Entry: view}, nil
}
