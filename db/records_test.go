// ABOUTME: Tests for the records repository
// ABOUTME: Round-trips ordered documents through SQLite
package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/fichas/models"
)

func TestRecordsRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordsRepository(openTestDB(t))

	var doc models.Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"nome": "Ana",
		"idade": 31,
		"ativo": true,
		"consulta": {"seconds": 1704164645, "nanoseconds": 0},
		"endereco": {"rua": "A", "numero": 10},
		"tags": ["x", "y"],
		"observacoes": null
	}`), &doc))

	created, err := repo.Create(ctx, "pacientes", doc)
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err, "generated id should be a UUID")
	assert.Equal(t, "pacientes", created.Collection)
	assert.Equal(t, created.ID, created.Document.String("id"))
	assert.Equal(t, "id", created.Document.Keys()[0])

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created.Document, got.Document, cmp.AllowUnexported(models.Record{})); diff != "" {
		t.Errorf("document changed in storage (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"id", "nome", "idade", "ativo", "consulta", "endereco", "tags", "observacoes"}, got.Document.Keys())

	ts, _ := got.Document.Get("consulta")
	assert.Equal(t, models.Timestamp{Seconds: 1704164645}, ts)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestRecordsRepository_CreateKeepsDocumentID(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordsRepository(openTestDB(t))

	doc := models.NewRecord(
		models.Field{Key: "nome", Value: "Bia"},
		models.Field{Key: "id", Value: "paciente-7"},
	)
	created, err := repo.Create(ctx, "", doc)
	require.NoError(t, err)

	assert.Equal(t, "paciente-7", created.ID)
	assert.Equal(t, DefaultCollection, created.Collection)
	assert.Equal(t, []string{"id", "nome"}, created.Document.Keys())

	_, err = repo.Create(ctx, "", doc)
	assert.Error(t, err, "duplicate id")
}

func TestRecordsRepository_GetMissing(t *testing.T) {
	repo := NewRecordsRepository(openTestDB(t))
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordsRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordsRepository(openTestDB(t))

	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, "pacientes", models.NewRecord(models.Field{Key: "id", Value: id}))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, "medicos", models.NewRecord(models.Field{Key: "id", Value: "m"}))
	require.NoError(t, err)

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	pacientes, err := repo.List(ctx, "pacientes", 0)
	require.NoError(t, err)
	assert.Len(t, pacientes, 3)

	limited, err := repo.List(ctx, "pacientes", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.List(ctx, "outros", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRecordsRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRecordsRepository(db)

	created, err := repo.Create(ctx, "", models.NewRecord(models.Field{Key: "nome", Value: "Ana"}))
	require.NoError(t, err)

	updated := models.NewRecord(models.Field{Key: "nome", Value: "Ana Maria"}, models.Field{Key: "id", Value: "ignored"})
	require.NoError(t, repo.Update(ctx, created.ID, updated))

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Document.String("nome"))
	assert.Equal(t, created.ID, got.Document.String("id"))

	assert.ErrorIs(t, repo.Update(ctx, "missing", updated), ErrRecordNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "", updated), ErrInvalidRecord)

	history := NewHistoryRepository(db)
	_, err = history.Append(ctx, created.ID, models.NewRecord(models.Field{Key: "action", Value: "archived"}))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	entries, err := history.ListByRecord(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "history is removed with the record")

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrRecordNotFound)
}
