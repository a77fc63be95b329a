// ABOUTME: Tests for the history log and group directory
// ABOUTME: Checks id assignment, newest-first listing and typed parsing
package db

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/models"
)

func TestHistoryRepository_AppendAssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(openTestDB(t))

	doc, err := repo.Append(ctx, "r1", models.NewRecord(
		models.Field{Key: "id", Value: "caller-id"},
		models.Field{Key: "sharedWith", Value: "bob"},
	))
	require.NoError(t, err)

	_, err = ulid.Parse(doc.String("id"))
	assert.NoError(t, err)
	assert.NotEqual(t, "caller-id", doc.String("id"))
	assert.Equal(t, "r1", doc.String("recordId"))
	assert.Equal(t, []string{"id", "recordId", "sharedWith", "timestamp"}, doc.Keys())

	ts, ok := doc.Get("timestamp")
	require.True(t, ok)
	assert.IsType(t, models.Timestamp{}, ts)
}

func TestHistoryRepository_AppendKeepsGivenTime(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(openTestDB(t))

	doc, err := repo.Append(ctx, "r1", models.NewRecord(
		models.Field{Key: "sharedAt", Value: models.Timestamp{Seconds: 5}},
	))
	require.NoError(t, err)

	_, hasTimestamp := doc.Get("timestamp")
	assert.False(t, hasTimestamp)
}

func TestHistoryRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(openTestDB(t))

	for _, action := range []string{"first", "second", "third"} {
		_, err := repo.Append(ctx, "r1", models.NewRecord(models.Field{Key: "action", Value: action}))
		require.NoError(t, err)
	}
	_, err := repo.Append(ctx, "r2", models.NewRecord(models.Field{Key: "action", Value: "other"}))
	require.NoError(t, err)

	docs, err := repo.ListByRecord(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "third", docs[0].String("action"))
	assert.Equal(t, "first", docs[2].String("action"))

	limited, err := repo.ListByRecord(ctx, "r1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].String("action"))

	entries, err := repo.Entries(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.NotNil(t, entries[0].Action)
	assert.Equal(t, "third", *entries[0].Action)
	assert.Equal(t, "r1", entries[0].Extra.String("recordId"))
}

func TestGroupsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupsRepository(openTestDB(t))

	_, err := repo.Upsert(ctx, "g2", "Triagem")
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "g1", "Pacientes")
	require.NoError(t, err)
	generated, err := repo.Upsert(ctx, "", "  Arquivo  ")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, "Arquivo", generated.Name)

	_, err = repo.Upsert(ctx, "g2", "Triagem Inicial")
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, "g3", " ")
	assert.ErrorIs(t, err, ErrInvalidGroup)

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Arquivo", "Pacientes", "Triagem Inicial"},
		[]string{groups[0].Name, groups[1].Name, groups[2].Name})

	dir, err := repo.Directory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Triagem Inicial", dir.GroupName("g2"))
	assert.Equal(t, "missing", dir.GroupName("missing"))
}
