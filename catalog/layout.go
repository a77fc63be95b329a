// ABOUTME: Optional per-field layout overrides loaded from YAML
// ABOUTME: Assigns group, subgroup and label to fields by key
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Placement overrides the display metadata of one field.
type Placement struct {
	Group    string `yaml:"group"`
	Subgroup string `yaml:"subgroup"`
	Label    string `yaml:"label"`
}

// Layout maps field keys to placements. A nil Layout places nothing.
type Layout map[string]Placement

// LoadLayout reads a layout file of the form:
//
//	email:
//	  group: Contato
//	  subgroup: Principal
//	dataNascimento:
//	  label: Nascimento
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes layout YAML.
func ParseLayout(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return layout, nil
}

func (l Layout) placement(key string) (Placement, bool) {
	if l == nil {
		return Placement{}, false
	}
	p, ok := l[key]
	return p, ok
}
