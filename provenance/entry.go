// ABOUTME: Converts stored history documents into typed entries
// ABOUTME: Missing, null and empty fields become absent; unknown keys are kept in Extra
package provenance

import (
	"github.com/harperreed/fichas/format"
	"github.com/harperreed/fichas/models"
)

var knownEntryKeys = map[string]bool{
	models.EntryFieldID:              true,
	models.EntryFieldPreviousGroupID: true,
	models.EntryFieldGroupID:         true,
	models.EntryFieldSharedWith:      true,
	models.EntryFieldUserName:        true,
	models.EntryFieldUserID:          true,
	models.EntryFieldAction:          true,
	models.EntryFieldTimestamp:       true,
	models.EntryFieldSharedAt:        true,
}

var idFormatter = format.New(nil)

// ParseEntry builds a HistoryEntry from a raw document. Scalar ids that are
// not strings (numbers, object ids) are stringified; structured values in
// id fields are treated as absent.
func ParseEntry(doc models.Record) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:              scalarString(doc, models.EntryFieldID),
		PreviousGroupID: optionalString(doc, models.EntryFieldPreviousGroupID),
		GroupID:         optionalString(doc, models.EntryFieldGroupID),
		SharedWith:      optionalString(doc, models.EntryFieldSharedWith),
		UserName:        optionalString(doc, models.EntryFieldUserName),
		UserID:          optionalString(doc, models.EntryFieldUserID),
		Action:          optionalString(doc, models.EntryFieldAction),
		Timestamp:       present(doc, models.EntryFieldTimestamp),
		SharedAt:        present(doc, models.EntryFieldSharedAt),
	}

	var extra []models.Field
	for _, f := range doc.Fields() {
		if !knownEntryKeys[f.Key] {
			extra = append(extra, f)
		}
	}
	entry.Extra = models.NewRecord(extra...)

	return entry
}

// ParseEntries converts documents in order.
func ParseEntries(docs []models.Record) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, len(docs))
	for i, doc := range docs {
		entries[i] = ParseEntry(doc)
	}
	return entries
}

func scalarString(doc models.Record, key string) string {
	v, _ := doc.Get(key)
	val := models.ValueOf(v)
	switch val.Kind {
	case models.KindString, models.KindNumber, models.KindBool:
		return idFormatter.Format(v)
	default:
		return ""
	}
}

func optionalString(doc models.Record, key string) *string {
	return models.StringPtr(scalarString(doc, key))
}

func present(doc models.Record, key string) any {
	v, _ := doc.Get(key)
	if models.ValueOf(v).IsEmpty() {
		return nil
	}
	return v
}
