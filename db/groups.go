// ABOUTME: Repository for record groups and their display names
// ABOUTME: Feeds the group directory used by audit narratives
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/fichas/provenance"
)

var ErrInvalidGroup = errors.New("invalid group")

// Group is a named bucket that records move between.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupsRepository provides operations for groups.
type GroupsRepository struct {
	db *sql.DB
}

// NewGroupsRepository creates a new groups repository.
func NewGroupsRepository(db *sql.DB) *GroupsRepository {
	return &GroupsRepository{db: db}
}

// Upsert creates or renames a group. An empty id generates one.
func (r *GroupsRepository) Upsert(ctx context.Context, id, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidGroup
	}
	if id == "" {
		id = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO record_groups (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, id, name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert group: %w", err)
	}

	return &Group{ID: id, Name: name}, nil
}

// List returns all groups ordered by name.
func (r *GroupsRepository) List(ctx context.Context) ([]Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM record_groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// Directory returns the id → name table for narratives.
func (r *GroupsRepository) Directory(ctx context.Context) (provenance.Directory, error) {
	groups, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	dir := make(provenance.Directory, len(groups))
	for _, g := range groups {
		dir[g.ID] = g.Name
	}
	return dir, nil
}
