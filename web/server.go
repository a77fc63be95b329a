// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides read-only record pages with grouped fields and audit history
package web

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/fichas/catalog"
	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/db"
	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
	"github.com/harperreed/fichas/viz"
)

//go:embed templates/*
var templatesFS embed.FS

const listLimit = 200

type Server struct {
	db        *sql.DB
	records   *db.RecordsRepository
	history   *db.HistoryRepository
	groups    *db.GroupsRepository
	catalog   *catalog.Catalog
	display   *config.DisplayConfig
	templates *template.Template
	logger    *zap.Logger
}

type recordRow struct {
	ID         string
	Title      string
	Collection string
	Group      string
}

type recordPage struct {
	Record  recordRow
	Groups  []catalog.RenderedGroup
	History []models.AuditViewModel
}

// NewServer parses the embedded templates. Nil catalog, display config or
// logger use defaults.
func NewServer(database *sql.DB, cat *catalog.Catalog, display *config.DisplayConfig, logger *zap.Logger) (*Server, error) {
	if display == nil {
		display = config.DefaultDisplay()
	}
	if cat == nil {
		cat = catalog.New(display, nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"mailto": func(s string) template.URL {
			return template.URL("mailto:" + s)
		},
		"isKind": func(k models.FieldKind, want string) bool {
			return string(k) == want
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		db:        database,
		records:   db.NewRecordsRepository(database),
		history:   db.NewHistoryRepository(database),
		groups:    db.NewGroupsRepository(database),
		catalog:   cat,
		display:   display,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /records/{id}", s.handleRecord)
	mux.HandleFunc("GET /records/{id}/graph", s.handleGraph)
	mux.HandleFunc("GET /api/records/{id}", s.handleRecordJSON)

	return withLogging(s.logger, withRecover(s.logger, mux))
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := r.URL.Query().Get("collection")

	records, err := s.records.List(ctx, collection, listLimit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	dir, err := s.groups.Directory(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}
	stats, err := viz.GenerateDashboardStats(ctx, s.db, s.display)
	if err != nil {
		s.serverError(w, err)
		return
	}

	rows := make([]recordRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.row(rec, dir))
	}

	data := map[string]any{
		"Title":           "Records",
		"ContentTemplate": "index-content",
		"Records":         rows,
		"Collection":      collection,
		"Stats":           stats,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(w, r)
	if !ok {
		return
	}

	data := map[string]any{
		"Title":           page.Record.Title,
		"ContentTemplate": "record-content",
		"Page":            page,
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleRecordJSON(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPage(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"id":      page.Record.ID,
		"title":   page.Record.Title,
		"groups":  page.Groups,
		"history": page.History,
	}); err != nil {
		s.logger.Warn("failed to write record json", zap.Error(err))
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	rec, err := s.records.Get(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	dir, err := s.groups.Directory(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}
	entries, err := s.history.Entries(ctx, id, 0)
	if err != nil {
		s.serverError(w, err)
		return
	}

	synth := provenance.New(s.display, s.catalog.Formatter(), dir)
	dot, err := viz.NewGraphGenerator(synth, dir).GenerateGroupFlow(ctx, s.row(rec, dir).Title, viz.Chronological(entries))
	if err != nil {
		s.serverError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

// loadPage writes the error response itself and reports false on failure.
func (s *Server) loadPage(w http.ResponseWriter, r *http.Request) (*recordPage, bool) {
	ctx := r.Context()
	id := r.PathValue("id")

	rec, err := s.records.Get(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, err)
		return nil, false
	}
	dir, err := s.groups.Directory(ctx)
	if err != nil {
		s.serverError(w, err)
		return nil, false
	}
	entries, err := s.history.Entries(ctx, id, 0)
	if err != nil {
		s.serverError(w, err)
		return nil, false
	}

	synth := provenance.New(s.display, s.catalog.Formatter(), dir)
	return &recordPage{
		Record:  s.row(rec, dir),
		Groups:  s.catalog.Render(rec.Document),
		History: synth.Synthesize(entries),
	}, true
}

func (s *Server) row(rec *db.StoredRecord, dir provenance.Directory) recordRow {
	title := s.catalog.Title(rec.Document, rec.ID)

	group := s.display.DefaultGroup
	if id := rec.Document.String(models.EntryFieldGroupID); id != "" {
		group = dir.GroupName(id)
	}

	return recordRow{ID: rec.ID, Title: title, Collection: rec.Collection, Group: group}
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
