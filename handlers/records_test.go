// ABOUTME: Tests for record MCP tool handlers
// ABOUTME: Validates tool input/output, error handling and the assembled server
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
)

func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "fichas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	groups := db.NewGroupsRepository(database)
	_, err = groups.Upsert(ctx, "A", "Triagem")
	require.NoError(t, err)
	_, err = groups.Upsert(ctx, "B", "Internação")
	require.NoError(t, err)

	rec, err := db.NewRecordsRepository(database).Create(ctx, "pacientes", models.NewRecord(
		models.Field{Key: "nome", Value: "Ana"},
		models.Field{Key: "email", Value: "ana@x.com"},
		models.Field{Key: "alergias", Value: ""},
	))
	require.NoError(t, err)
	return database, rec.ID
}

func newHandlers(database *sql.DB) *RecordHandlers {
	cat := catalog.New(nil, nil, catalog.Layout{
		"email":    {Group: "Contato"},
		"alergias": {Group: "Clínico"},
	})
	return NewRecordHandlers(database, cat, nil)
}

func TestFindRecords(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	_, out, err := h.FindRecords(ctx, nil, FindRecordsInput{})
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, RecordSummary{ID: id, Title: "Ana", Collection: "pacientes", Group: "Geral"}, out.Records[0])

	_, out, err = h.FindRecords(ctx, nil, FindRecordsInput{Collection: "outros"})
	require.NoError(t, err)
	assert.Empty(t, out.Records)
}

func TestDescribeRecord(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)

	_, out, err := h.DescribeRecord(context.Background(), nil, DescribeRecordInput{ID: id})
	require.NoError(t, err)

	assert.Equal(t, "Ana", out.Record.Title)
	names := make([]string, len(out.Groups))
	for i, g := range out.Groups {
		names[i] = g.Name
	}
	assert.Equal(t, []string{"Geral", "Contato"}, names, "empty clinical group is hidden")

	field := out.Groups[1].Subgroups[0].Fields[0]
	assert.Equal(t, "Email", field.Label)
	assert.Equal(t, models.FieldEmail, field.Kind)
	assert.Equal(t, "ana@x.com", field.Value)
}

func TestDescribeRecord_Errors(t *testing.T) {
	database, _ := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	_, _, err := h.DescribeRecord(ctx, nil, DescribeRecordInput{})
	assert.EqualError(t, err, "id is required")

	_, _, err = h.DescribeRecord(ctx, nil, DescribeRecordInput{ID: "missing"})
	assert.ErrorIs(t, err, db.ErrRecordNotFound)
}

func TestMutationsAndHistory(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	_, moved, err := h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "A", Actor: "Bia"})
	require.NoError(t, err)
	assert.Equal(t, `Added to group "Triagem"`, moved.Entry.Narrative)
	assert.Equal(t, models.ActionGroupChange, moved.Entry.ActionType)
	assert.Equal(t, "Bia", moved.Entry.Actor)
	assert.NotEmpty(t, moved.Entry.DisplayTimestamp)

	_, moved, err = h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "B"})
	require.NoError(t, err)
	assert.Equal(t, `Moved from group "Triagem" to "Internação"`, moved.Entry.Narrative)
	assert.Equal(t, "Unknown user", moved.Entry.Actor)

	_, _, err = h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "B"})
	assert.ErrorIs(t, err, db.ErrNoGroupChange)

	_, shared, err := h.ShareRecord(ctx, nil, ShareRecordInput{ID: id, SharedWith: "carol@x.com", Permission: "read"})
	require.NoError(t, err)
	assert.Equal(t, `Shared with "carol@x.com" as read`, shared.Entry.Narrative)
	assert.Equal(t, "carol@x.com", shared.Entry.Actor)

	_, _, err = h.ShareRecord(ctx, nil, ShareRecordInput{ID: id})
	assert.ErrorIs(t, err, db.ErrInvalidShare)

	_, perm, err := h.SetPermission(ctx, nil, SetPermissionInput{ID: id, Permission: "edit", Actor: "Bia"})
	require.NoError(t, err)
	assert.Equal(t, `Permission changed to "edit"`, perm.Entry.Narrative)

	_, hist, err := h.RecordHistory(ctx, nil, RecordHistoryInput{ID: id})
	require.NoError(t, err)
	require.Len(t, hist.Entries, 4)
	assert.Equal(t, models.ActionPermission, hist.Entries[0].ActionType, "newest first")
	assert.Equal(t, `Added to group "Triagem"`, hist.Entries[3].Narrative)

	_, hist, err = h.RecordHistory(ctx, nil, RecordHistoryInput{ID: id, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, hist.Entries, 1)

	_, summary, err := h.FindRecords(ctx, nil, FindRecordsInput{})
	require.NoError(t, err)
	assert.Equal(t, "Internação", summary.Records[0].Group)
}

func TestGroupFlowGraph(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	_, _, err := h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "A", Actor: "Bia"})
	require.NoError(t, err)
	_, _, err = h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "B", Actor: "Bia"})
	require.NoError(t, err)
	_, _, err = h.ShareRecord(ctx, nil, ShareRecordInput{ID: id, SharedWith: "carol"})
	require.NoError(t, err)

	_, out, err := h.GroupFlowGraph(ctx, nil, GroupFlowInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NodeCount, "outside, Triagem and Internação")
	assert.Equal(t, 2, out.EdgeCount)
	assert.Contains(t, out.DOTSource, "Triagem")
	assert.Contains(t, out.DOTSource, "Internação")
}

func TestReadResource(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("fichas://records")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, `"title": "Ana"`)

	res, err = read("fichas://records/" + id)
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"Contato"`)

	res, err = read("fichas://records/" + id + "/history")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"entries": []`)

	res, err = read("fichas://dashboard")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "TotalRecords")

	_, err = read("fichas://records/missing")
	assert.Error(t, err)
	_, err = read("crm://contacts")
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	database, id := setupTestDB(t)
	h := newHandlers(database)
	ctx := context.Background()

	_, _, err := h.AssignGroup(ctx, nil, AssignGroupInput{ID: id, GroupID: "A", Actor: "Bia"})
	require.NoError(t, err)

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("record-summary", map[string]string{"record_id": id})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Title: Ana")
	assert.Contains(t, text, "- Email: ana@x.com")
	assert.NotContains(t, text, "Alergias")

	res, err = get("audit-review", map[string]string{"record_id": id})
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, `[group-change] Added to group "Triagem" (by Bia, `)

	_, err = get("record-summary", nil)
	assert.EqualError(t, err, "record_id is required")
	_, err = get("nope", nil)
	assert.Error(t, err)
}

func TestServerOverTransport(t *testing.T) {
	database, id := setupTestDB(t)
	ctx := context.Background()

	server := NewServer(database, nil, nil, "test")
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"find_records", "describe_record", "record_history",
		"assign_group", "share_record", "set_permission", "group_flow_graph",
	}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "assign_group",
		Arguments: map[string]any{"id": id, "group_id": "A", "actor": "Bia"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "describe_record",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
