// ABOUTME: Tests for the read-only web pages
// ABOUTME: Serves requests through httptest against a temporary database
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
)

func setupServer(t *testing.T) (*Server, string) {
	t.Helper()
	ctx := context.Background()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "fichas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = db.NewGroupsRepository(database).Upsert(ctx, "A", "Triagem")
	require.NoError(t, err)
	rec, err := db.NewRecordsRepository(database).Create(ctx, "pacientes", models.NewRecord(
		models.Field{Key: "nome", Value: "Ana"},
		models.Field{Key: "email", Value: "ana@x.com"},
		models.Field{Key: "site", Value: "https://ana.dev"},
		models.Field{Key: "ativo", Value: true},
	))
	require.NoError(t, err)
	_, err = db.AssignGroup(ctx, database, rec.ID, "A", "Bia")
	require.NoError(t, err)

	cat := catalog.New(nil, nil, catalog.Layout{"email": {Group: "Contato"}})
	srv, err := NewServer(database, cat, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return srv, rec.ID
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestIndex(t *testing.T) {
	srv, id := setupServer(t)
	rr := get(t, srv.Handler(), "/")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "/records/"+id)
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "Triagem")
	assert.Contains(t, body, "1 records")

	rr = get(t, srv.Handler(), "/?collection=outros")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No records yet.")
}

func TestRecordPage(t *testing.T) {
	srv, id := setupServer(t)
	rr := get(t, srv.Handler(), "/records/"+id)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<h2>Geral</h2>")
	assert.Contains(t, body, "<h2>Contato</h2>")
	assert.Contains(t, body, `href="mailto:ana@x.com"`)
	assert.Contains(t, body, `href="https://ana.dev"`)
	assert.Contains(t, body, "Sim")
	assert.Contains(t, body, "Added to group &#34;Triagem&#34;")
	assert.Contains(t, body, "badge-accent")
}

func TestRecordJSON(t *testing.T) {
	srv, id := setupServer(t)
	rr := get(t, srv.Handler(), "/api/records/"+id)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var payload struct {
		ID      string                  `json:"id"`
		Title   string                  `json:"title"`
		Groups  []catalog.RenderedGroup `json:"groups"`
		History []models.AuditViewModel `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, id, payload.ID)
	assert.Equal(t, "Ana", payload.Title)
	require.Len(t, payload.History, 1)
	assert.Equal(t, models.ActionGroupChange, payload.History[0].ActionType)
	assert.Equal(t, "Bia", payload.History[0].Actor)
	assert.NotEmpty(t, payload.Groups)
}

func TestGraph(t *testing.T) {
	srv, id := setupServer(t)
	rr := get(t, srv.Handler(), "/records/"+id+"/graph")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Triagem")
}

func TestNotFound(t *testing.T) {
	srv, _ := setupServer(t)

	for _, path := range []string{"/records/missing", "/api/records/missing", "/records/missing/graph", "/nope"} {
		rr := get(t, srv.Handler(), path)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	srv, _ := setupServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}
