// ABOUTME: Value accessors that read a field descriptor's value out of a record
// ABOUTME: Raw lookup plus the display string used by viewers

package catalog

import (
	"github.com/harperreed/fichas/models"
)

// GetValue returns the raw value of a field, or nil when absent.
func GetValue(d models.FieldDescriptor, record models.Record) any {
	v, _ := record.Get(d.ID)
	return v
}

// GetDisplayString renders a field value for display. Booleans use the
// yes/no labels.
func (c *Catalog) GetDisplayString(d models.FieldDescriptor, record models.Record) string {
	return c.fmt.FormatDisplay(GetValue(d, record))
}
