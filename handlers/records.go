// ABOUTME: Record MCP tool handlers
// ABOUTME: Implements find_records, describe_record and record_history tools
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

const defaultHistoryLimit = 50

type RecordHandlers struct {
	db      *sql.DB
	records *db.RecordsRepository
	history *db.HistoryRepository
	groups  *db.GroupsRepository
	catalog *catalog.Catalog
	display *config.DisplayConfig
}

// NewRecordHandlers wires the record tools. Nil catalog or display config
// use defaults.
func NewRecordHandlers(database *sql.DB, cat *catalog.Catalog, display *config.DisplayConfig) *RecordHandlers {
	if display == nil {
		display = config.DefaultDisplay()
	}
	if cat == nil {
		cat = catalog.New(display, nil, nil)
	}
	return &RecordHandlers{
		db:      database,
		records: db.NewRecordsRepository(database),
		history: db.NewHistoryRepository(database),
		groups:  db.NewGroupsRepository(database),
		catalog: cat,
		display: display,
	}
}

type RecordSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Collection string `json:"collection"`
	Group      string `json:"group"`
}

type FindRecordsInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"Only list records from this collection"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindRecordsOutput struct {
	Records []RecordSummary `json:"records"`
}

func (h *RecordHandlers) FindRecords(ctx context.Context, _ *mcp.CallToolRequest, input FindRecordsInput) (*mcp.CallToolResult, FindRecordsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := h.records.List(ctx, input.Collection, limit)
	if err != nil {
		return nil, FindRecordsOutput{}, fmt.Errorf("failed to list records: %w", err)
	}
	dir, err := h.groups.Directory(ctx)
	if err != nil {
		return nil, FindRecordsOutput{}, fmt.Errorf("failed to load groups: %w", err)
	}

	out := FindRecordsOutput{Records: make([]RecordSummary, 0, len(records))}
	for _, rec := range records {
		out.Records = append(out.Records, h.summary(rec, dir))
	}
	return nil, out, nil
}

type DescribeRecordInput struct {
	ID string `json:"id" jsonschema:"Record ID (required)"`
}

type DescribeRecordOutput struct {
	Record RecordSummary           `json:"record"`
	Groups []catalog.RenderedGroup `json:"groups"`
}

func (h *RecordHandlers) DescribeRecord(ctx context.Context, _ *mcp.CallToolRequest, input DescribeRecordInput) (*mcp.CallToolResult, DescribeRecordOutput, error) {
	rec, dir, err := h.load(ctx, input.ID)
	if err != nil {
		return nil, DescribeRecordOutput{}, err
	}

	return nil, DescribeRecordOutput{
		Record: h.summary(rec, dir),
		Groups: h.catalog.Render(rec.Document),
	}, nil
}

type RecordHistoryInput struct {
	ID    string `json:"id" jsonschema:"Record ID (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of entries, newest first (default 50)"`
}

type RecordHistoryOutput struct {
	RecordID string                  `json:"record_id"`
	Entries  []models.AuditViewModel `json:"entries"`
}

func (h *RecordHandlers) RecordHistory(ctx context.Context, _ *mcp.CallToolRequest, input RecordHistoryInput) (*mcp.CallToolResult, RecordHistoryOutput, error) {
	_, dir, err := h.load(ctx, input.ID)
	if err != nil {
		return nil, RecordHistoryOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := h.history.Entries(ctx, input.ID, limit)
	if err != nil {
		return nil, RecordHistoryOutput{}, fmt.Errorf("failed to load history: %w", err)
	}

	return nil, RecordHistoryOutput{
		RecordID: input.ID,
		Entries:  h.synthesizer(dir).Synthesize(entries),
	}, nil
}

// load fetches a record and the group directory used to name its groups.
func (h *RecordHandlers) load(ctx context.Context, id string) (*db.StoredRecord, provenance.Directory, error) {
	if id == "" {
		return nil, nil, fmt.Errorf("id is required")
	}

	rec, err := h.records.Get(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", id, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get record: %w", err)
	}

	dir, err := h.groups.Directory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load groups: %w", err)
	}
	return rec, dir, nil
}

func (h *RecordHandlers) summary(rec *db.StoredRecord, dir provenance.Directory) RecordSummary {
	group := h.display.DefaultGroup
	if id := rec.Document.String(models.EntryFieldGroupID); id != "" {
		group = dir.GroupName(id)
	}
	return RecordSummary{
		ID:         rec.ID,
		Title:      h.catalog.Title(rec.Document, rec.ID),
		Collection: rec.Collection,
		Group:      group,
	}
}

func (h *RecordHandlers) synthesizer(dir provenance.Directory) *provenance.Synthesizer {
	return provenance.New(h.display, h.catalog.Formatter(), dir)
}
