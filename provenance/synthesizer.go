// ABOUTME: Turns heterogeneous history entries into audit narratives
// ABOUTME: Classification, narrative, actor, timestamp and badge are total per entry
package provenance

import (
	"fmt"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/format"
	"github.com/harperreed/fichas/models"
)

// Badge is the icon and color tag shown next to an audit line.
type Badge struct {
	Icon  string
	Color string
}

// Synthesizer derives AuditViewModels. It is stateless across entries and
// safe for concurrent use.
type Synthesizer struct {
	cfg   *config.DisplayConfig
	fmt   *format.Formatter
	namer GroupNamer
}

// New creates a synthesizer. Nil arguments fall back to defaults; a nil
// namer shows raw group ids.
func New(cfg *config.DisplayConfig, f *format.Formatter, namer GroupNamer) *Synthesizer {
	if cfg == nil {
		cfg = config.DefaultDisplay()
	}
	if f == nil {
		f = format.New(cfg)
	}
	if namer == nil {
		namer = identityNamer{}
	}
	return &Synthesizer{cfg: cfg, fmt: f, namer: namer}
}

// Classify decides the action type from which fields are present.
func Classify(entry models.HistoryEntry) models.ActionType {
	switch {
	case entry.PreviousGroupID != nil || entry.GroupID != nil:
		return models.ActionGroupChange
	case entry.SharedWith != nil:
		return models.ActionSharing
	case entry.Action != nil:
		return models.ActionType(*entry.Action)
	default:
		return models.ActionUnknown
	}
}

// DescribeGroupChange narrates a move between groups.
func (s *Synthesizer) DescribeGroupChange(entry models.HistoryEntry) string {
	prev, cur := entry.PreviousGroupID, entry.GroupID
	switch {
	case prev != nil && cur != nil:
		return fmt.Sprintf("Moved from group \"%s\" to \"%s\"", s.groupName(*prev), s.groupName(*cur))
	case cur != nil:
		return fmt.Sprintf("Added to group \"%s\"", s.groupName(*cur))
	case prev != nil:
		return fmt.Sprintf("Removed from group \"%s\"", s.groupName(*prev))
	default:
		return s.cfg.GroupChangeFallback
	}
}

// Narrative describes an entry for its action type.
func (s *Synthesizer) Narrative(entry models.HistoryEntry) string {
	action := Classify(entry)
	switch action {
	case models.ActionGroupChange:
		return s.DescribeGroupChange(entry)
	case models.ActionSharing:
		text := fmt.Sprintf("Shared with \"%s\"", *entry.SharedWith)
		if p := s.permission(entry); p != "" {
			text += " as " + p
		}
		return text
	case models.ActionPermission:
		if p := s.permission(entry); p != "" {
			return fmt.Sprintf("Permission changed to \"%s\"", p)
		}
		return "Permissions changed"
	case models.ActionUnknown:
		return s.cfg.UnknownAction
	default:
		return string(action)
	}
}

// ResolveTimestamp formats timestamp, falling back to sharedAt. Neither
// present gives "".
func (s *Synthesizer) ResolveTimestamp(entry models.HistoryEntry) string {
	if !models.ValueOf(entry.Timestamp).IsEmpty() {
		return s.fmt.Format(entry.Timestamp)
	}
	return s.fmt.Format(entry.SharedAt)
}

// ResolveActor names whoever caused the entry.
func (s *Synthesizer) ResolveActor(entry models.HistoryEntry) string {
	for _, candidate := range []*string{entry.UserName, entry.UserID, entry.SharedWith} {
		if candidate != nil {
			return *candidate
		}
	}
	return s.cfg.UnknownUser
}

// Badge maps an action type to its icon and color.
func (s *Synthesizer) Badge(action models.ActionType) Badge {
	switch action {
	case models.ActionGroupChange:
		return Badge{Icon: "swap", Color: "accent"}
	case models.ActionSharing:
		return Badge{Icon: "share", Color: "primary"}
	case models.ActionPermission:
		return Badge{Icon: "security", Color: "warn"}
	default:
		return Badge{Icon: s.cfg.DefaultIcon, Color: s.cfg.DefaultColor}
	}
}

// View builds the audit view of one entry.
func (s *Synthesizer) View(entry models.HistoryEntry) models.AuditViewModel {
	action := Classify(entry)
	badge := s.Badge(action)
	return models.AuditViewModel{
		EntryID:          entry.ID,
		ActionType:       action,
		Icon:             badge.Icon,
		Color:            badge.Color,
		Narrative:        s.Narrative(entry),
		DisplayTimestamp: s.ResolveTimestamp(entry),
		Actor:            s.ResolveActor(entry),
	}
}

// Synthesize returns one view per entry in input order.
func (s *Synthesizer) Synthesize(entries []models.HistoryEntry) []models.AuditViewModel {
	views := make([]models.AuditViewModel, len(entries))
	for i, entry := range entries {
		views[i] = s.View(entry)
	}
	return views
}

// groupName asks the namer, showing the raw id when the namer returns
// nothing or panics.
func (s *Synthesizer) groupName(id string) (name string) {
	defer func() {
		if recover() != nil {
			name = id
		}
	}()
	if name = s.namer.GroupName(id); name != "" {
		return name
	}
	return id
}

func (s *Synthesizer) permission(entry models.HistoryEntry) string {
	v, _ := entry.Extra.Get(models.EntryFieldPermission)
	val := models.ValueOf(v)
	if val.Kind != models.KindString {
		return ""
	}
	return val.Raw().(string)
}
