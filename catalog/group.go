// ABOUTME: Two-level group and subgroup partitioning of a field catalog
// ABOUTME: Stable partitions that never drop or duplicate a descriptor
package catalog

import (
	"github.com/harperreed/fichas/models"
)

// Organize partitions fields by group, then each group by subgroup.
// Order within every bucket equals catalog order.
func (c *Catalog) Organize(fields []models.FieldDescriptor) models.GroupedCatalog {
	var groups []models.Group
	index := make(map[string]int)

	for _, d := range fields {
		name := c.bucket(d.Group)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, models.Group{Name: name})
		}
		groups[i].Fields = append(groups[i].Fields, d)
	}

	for i := range groups {
		groups[i].Subgroups = c.OrganizeBySubgroup(groups[i].Fields)
	}

	return models.GroupedCatalog{Groups: groups}
}

// OrganizeBySubgroup partitions fields of an already selected group.
func (c *Catalog) OrganizeBySubgroup(fields []models.FieldDescriptor) []models.Subgroup {
	var subgroups []models.Subgroup
	index := make(map[string]int)

	for _, d := range fields {
		name := c.bucket(d.Subgroup)
		i, ok := index[name]
		if !ok {
			i = len(subgroups)
			index[name] = i
			subgroups = append(subgroups, models.Subgroup{Name: name})
		}
		subgroups[i].Fields = append(subgroups[i].Fields, d)
	}

	return subgroups
}

func (c *Catalog) bucket(name string) string {
	if name == "" {
		return c.cfg.DefaultGroup
	}
	return name
}

// HasNonEmptyField reports whether any field has a value other than null,
// absent or "". Zero and false count as values.
func HasNonEmptyField(fields []models.FieldDescriptor, record models.Record) bool {
	for _, d := range fields {
		if !models.ValueOf(GetValue(d, record)).IsEmpty() {
			return true
		}
	}
	return false
}

// VisibleGroups drops groups whose fields are all empty in record.
func VisibleGroups(grouped models.GroupedCatalog, record models.Record) []models.Group {
	visible := make([]models.Group, 0, len(grouped.Groups))
	for _, g := range grouped.Groups {
		if HasNonEmptyField(g.Fields, record) {
			visible = append(visible, g)
		}
	}
	return visible
}
