// ABOUTME: Display metadata for record fields and the grouped layout built from it
// ABOUTME: Defines FieldKind, FieldDescriptor, Group, Subgroup and GroupedCatalog
package models

// FieldKind is the inferred display widget for a field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldURL      FieldKind = "url"
	FieldTextarea FieldKind = "textarea"
	FieldNumber   FieldKind = "number"
	FieldCheckbox FieldKind = "checkbox"
	FieldDate     FieldKind = "date"
)

// FieldDescriptor describes how one record field is displayed.
type FieldDescriptor struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Group    string    `json:"group,omitempty"`
	Subgroup string    `json:"subgroup,omitempty"`
}

// Subgroup is the second layout level.
type Subgroup struct {
	Name   string            `json:"name"`
	Fields []FieldDescriptor `json:"fields"`
}

// Group is the first layout level. Fields keeps catalog order across
// all subgroups of the group.
type Group struct {
	Name      string            `json:"name"`
	Fields    []FieldDescriptor `json:"fields"`
	Subgroups []Subgroup        `json:"subgroups"`
}

// GroupedCatalog is a field catalog partitioned by group and subgroup.
// Groups and subgroups appear in order of first appearance in the catalog.
type GroupedCatalog struct {
	Groups []Group `json:"groups"`
}

// Group returns the named group.
func (g GroupedCatalog) Group(name string) (Group, bool) {
	for _, grp := range g.Groups {
		if grp.Name == name {
			return grp, true
		}
	}
	return Group{}, false
}

// GroupNames returns group names in display order.
func (g GroupedCatalog) GroupNames() []string {
	names := make([]string, len(g.Groups))
	for i, grp := range g.Groups {
		names[i] = grp.Name
	}
	return names
}

// FieldCount returns the number of descriptors across all buckets.
func (g GroupedCatalog) FieldCount() int {
	n := 0
	for _, grp := range g.Groups {
		for _, sub := range grp.Subgroups {
			n += len(sub.Fields)
		}
	}
	return n
}
