// ABOUTME: Group id to display name lookup used in audit narratives
// ABOUTME: Unknown ids render as themselves so narratives never come out blank
package provenance

// GroupNamer resolves a group id to its display name.
type GroupNamer interface {
	GroupName(id string) string
}

// Directory is a static id → name table.
type Directory map[string]string

// GroupName returns the registered name, or the id when none is registered.
func (d Directory) GroupName(id string) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}
	return id
}

// NamerFunc adapts a function to GroupNamer.
type NamerFunc func(id string) string

func (f NamerFunc) GroupName(id string) string {
	return f(id)
}

type identityNamer struct{}

func (identityNamer) GroupName(id string) string { return id }
