// ABOUTME: Tests for group assignment, sharing and permission changes
// ABOUTME: Logged entries are checked through the audit narrative they produce
package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

func TestAssignGroup(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	records := NewRecordsRepository(db)
	groups := NewGroupsRepository(db)

	_, err := groups.Upsert(ctx, "A", "Triagem")
	require.NoError(t, err)
	_, err = groups.Upsert(ctx, "B", "Atendimento")
	require.NoError(t, err)

	rec, err := records.Create(ctx, "", models.NewRecord(models.Field{Key: "nome", Value: "Ana"}))
	require.NoError(t, err)

	dir, err := groups.Directory(ctx)
	require.NoError(t, err)
	synth := provenance.New(nil, nil, dir)

	added, err := AssignGroup(ctx, db, rec.ID, "A", "Bia")
	require.NoError(t, err)
	view := synth.View(provenance.ParseEntry(added))
	assert.Equal(t, models.ActionGroupChange, view.ActionType)
	assert.Equal(t, `Added to group "Triagem"`, view.Narrative)
	assert.Equal(t, "Bia", view.Actor)
	assert.NotEmpty(t, view.DisplayTimestamp)

	moved, err := AssignGroup(ctx, db, rec.ID, "B", "")
	require.NoError(t, err)
	view = synth.View(provenance.ParseEntry(moved))
	assert.Equal(t, `Moved from group "Triagem" to "Atendimento"`, view.Narrative)
	assert.Equal(t, "Unknown user", view.Actor)

	got, err := records.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Document.String("groupId"))

	_, err = AssignGroup(ctx, db, rec.ID, "B", "Bia")
	assert.ErrorIs(t, err, ErrNoGroupChange)

	removed, err := AssignGroup(ctx, db, rec.ID, "", "Bia")
	require.NoError(t, err)
	assert.Equal(t, `Removed from group "Atendimento"`, synth.Narrative(provenance.ParseEntry(removed)))

	got, err = records.Get(ctx, rec.ID)
	require.NoError(t, err)
	_, hasGroup := got.Document.Get("groupId")
	assert.False(t, hasGroup)

	entries, err := NewHistoryRepository(db).Entries(ctx, rec.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = AssignGroup(ctx, db, "missing", "A", "Bia")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAssignGroup_FailedChangeLeavesNoEntry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rec, err := NewRecordsRepository(db).Create(ctx, "", models.NewRecord(models.Field{Key: "groupId", Value: "A"}))
	require.NoError(t, err)

	_, err = AssignGroup(ctx, db, rec.ID, "A", "Bia")
	require.ErrorIs(t, err, ErrNoGroupChange)

	docs, err := NewHistoryRepository(db).ListByRecord(ctx, rec.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestShareRecord(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	synth := provenance.New(nil, nil, nil)

	rec, err := NewRecordsRepository(db).Create(ctx, "", models.NewRecord(models.Field{Key: "nome", Value: "Ana"}))
	require.NoError(t, err)

	doc, err := ShareRecord(ctx, db, rec.ID, "alice@x.com", "edit", "Bia")
	require.NoError(t, err)
	view := synth.View(provenance.ParseEntry(doc))
	assert.Equal(t, models.ActionSharing, view.ActionType)
	assert.Equal(t, `Shared with "alice@x.com" as edit`, view.Narrative)
	assert.Equal(t, "Bia", view.Actor)
	assert.NotEmpty(t, view.DisplayTimestamp)

	doc, err = ShareRecord(ctx, db, rec.ID, "carol", "", "")
	require.NoError(t, err)
	view = synth.View(provenance.ParseEntry(doc))
	assert.Equal(t, `Shared with "carol"`, view.Narrative)
	assert.Equal(t, "carol", view.Actor)

	_, err = ShareRecord(ctx, db, rec.ID, "  ", "", "")
	assert.ErrorIs(t, err, ErrInvalidShare)

	_, err = ShareRecord(ctx, db, "missing", "bob", "", "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSetPermission(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	synth := provenance.New(nil, nil, nil)

	rec, err := NewRecordsRepository(db).Create(ctx, "", models.NewRecord(models.Field{Key: "nome", Value: "Ana"}))
	require.NoError(t, err)

	doc, err := SetPermission(ctx, db, rec.ID, "read", "Bia")
	require.NoError(t, err)
	view := synth.View(provenance.ParseEntry(doc))
	assert.Equal(t, models.ActionPermission, view.ActionType)
	assert.Equal(t, "security", view.Icon)
	assert.Equal(t, `Permission changed to "read"`, view.Narrative)

	_, err = SetPermission(ctx, db, "missing", "read", "Bia")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
