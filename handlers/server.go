// ABOUTME: Assembles the MCP server with record tools, resources and prompts
// ABOUTME: Used by the mcp subcommand and by tests over in-memory transports
package handlers

import (
	"database/sql"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/config"
)

// NewServer builds an MCP server exposing database.
func NewServer(database *sql.DB, cat *catalog.Catalog, display *config.DisplayConfig, version string) *mcp.Server {
	h := NewRecordHandlers(database, cat, display)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fichas",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_records",
		Description: "List records, optionally filtered by collection",
	}, h.FindRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_record",
		Description: "Show a record's fields organized into labeled groups, with empty groups hidden",
	}, h.DescribeRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_history",
		Description: "Show a record's audit history as narratives with actor and time, newest first",
	}, h.RecordHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assign_group",
		Description: "Move a record to a group (or out of its group) and log the change",
	}, h.AssignGroup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "share_record",
		Description: "Log that a record was shared with someone, with an optional permission",
	}, h.ShareRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_permission",
		Description: "Log a permission change on a record",
	}, h.SetPermission)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "group_flow_graph",
		Description: "Generate a GraphViz DOT graph of how a record moved between groups",
	}, h.GroupFlowGraph)

	server.AddResource(&mcp.Resource{
		URI:         "fichas://records",
		Name:        "records",
		Description: "All records with their current group",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "fichas://dashboard",
		Name:        "dashboard",
		Description: "Record counts per group and action",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "fichas://records/{id}",
		Name:        "record",
		Description: "One record organized into groups",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "fichas://records/{id}/history",
		Name:        "record-history",
		Description: "Audit history of one record",
		MIMEType:    "application/json",
	}, h.ReadResource)

	recordArg := []*mcp.PromptArgument{{Name: "record_id", Description: "Record ID", Required: true}}
	server.AddPrompt(&mcp.Prompt{
		Name:        "record-summary",
		Description: "Summarize a record's visible fields",
		Arguments:   recordArg,
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "audit-review",
		Description: "Review a record's change history",
		Arguments:   recordArg,
	}, h.GetPrompt)

	return server
}
