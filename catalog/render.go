// ABOUTME: One-call rendering of a record into visible groups of display strings
// ABOUTME: Shared by the terminal, web and MCP surfaces
package catalog

import (
	"strings"

	"github.com/harperreed/fichas/models"
)

// RenderedField is one field with its display string.
type RenderedField struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Kind     models.FieldKind `json:"kind"`
	Required bool             `json:"required,omitempty"`
	Value    string           `json:"value"`
}

// RenderedSubgroup holds a subgroup's fields in catalog order.
type RenderedSubgroup struct {
	Name   string          `json:"name"`
	Fields []RenderedField `json:"fields"`
}

// RenderedGroup is a visible group with its subgroups.
type RenderedGroup struct {
	Name      string             `json:"name"`
	Subgroups []RenderedSubgroup `json:"subgroups"`
}

// Render builds, organizes and formats record, dropping groups whose fields
// are all empty.
func (c *Catalog) Render(record models.Record) []RenderedGroup {
	grouped := c.Organize(c.Build(record))
	visible := VisibleGroups(grouped, record)

	out := make([]RenderedGroup, 0, len(visible))
	for _, g := range visible {
		rg := RenderedGroup{Name: g.Name}
		for _, sub := range g.Subgroups {
			rs := RenderedSubgroup{Name: sub.Name, Fields: make([]RenderedField, 0, len(sub.Fields))}
			for _, d := range sub.Fields {
				rs.Fields = append(rs.Fields, RenderedField{
					ID:       d.ID,
					Label:    d.Label,
					Kind:     d.Kind,
					Required: d.Required,
					Value:    c.GetDisplayString(d, record),
				})
			}
			rg.Subgroups = append(rg.Subgroups, rs)
		}
		out = append(out, rg)
	}
	return out
}

// Title names a record by its first non-empty required field, falling back
// to fallback.
func (c *Catalog) Title(record models.Record, fallback string) string {
	for _, key := range c.cfg.RequiredFields {
		v, _ := record.Get(key)
		if s := strings.TrimSpace(c.fmt.Format(v)); s != "" {
			return s
		}
	}
	return fallback
}
