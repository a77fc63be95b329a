// ABOUTME: Builds ordered field display metadata from a schema-less record
// ABOUTME: Always returns a renderable catalog, falling back to a fixed one for bad input
package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/format"
	"github.com/harperreed/fichas/models"
)

// Catalog derives display metadata for records. It keeps no per-record state.
type Catalog struct {
	cfg    *config.DisplayConfig
	fmt    *format.Formatter
	layout Layout
}

// New creates a catalog. Nil config or formatter use defaults; layout may be nil.
func New(cfg *config.DisplayConfig, f *format.Formatter, layout Layout) *Catalog {
	if cfg == nil {
		cfg = config.DefaultDisplay()
	}
	if f == nil {
		f = format.New(cfg)
	}
	return &Catalog{cfg: cfg, fmt: f, layout: layout}
}

// Formatter returns the formatter used for display strings.
func (c *Catalog) Formatter() *format.Formatter {
	return c.fmt
}

// Infer guesses a field kind using the configured textarea threshold.
func (c *Catalog) Infer(v any) models.FieldKind {
	return inferWithThreshold(v, c.cfg.TextareaThreshold)
}

// FallbackCatalog is used when a record is not a mapping or has no fields.
func FallbackCatalog() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "nome", Label: "Nome", Kind: models.FieldText, Required: true},
		{ID: "id", Label: "ID", Kind: models.FieldText},
	}
}

// Build returns one descriptor per record field in document order, skipping
// the reserved identifier key. It never returns an empty catalog.
func (c *Catalog) Build(record any) []models.FieldDescriptor {
	rec, ok := models.AsRecord(record)
	if !ok {
		return FallbackCatalog()
	}

	fields := make([]models.FieldDescriptor, 0, rec.Len())
	for _, f := range rec.Fields() {
		if f.Key == c.cfg.ReservedKey {
			continue
		}

		d := models.FieldDescriptor{
			ID:       f.Key,
			Label:    Label(f.Key),
			Kind:     c.Infer(f.Value),
			Required: c.cfg.IsRequired(f.Key),
		}
		if p, ok := c.layout.placement(f.Key); ok {
			d.Group = p.Group
			d.Subgroup = p.Subgroup
			if p.Label != "" {
				d.Label = p.Label
			}
		}
		fields = append(fields, d)
	}

	if len(fields) == 0 {
		return FallbackCatalog()
	}
	return fields
}

// Label turns a field key into a display label: a space before each
// non-initial capital, underscores as spaces, first letter upper-cased.
func Label(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	s := b.String()
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
