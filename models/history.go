// ABOUTME: History log entries and the audit view derived from them
// ABOUTME: Optional fields are nil pointers so classification matches on presence
package models

// ActionType classifies a history entry.
type ActionType string

const (
	ActionGroupChange ActionType = "group-change"
	ActionSharing     ActionType = "sharing"
	ActionPermission  ActionType = "permission"
	ActionUnknown     ActionType = "unknown"
)

// History entry document keys.
const (
	EntryFieldID              = "id"
	EntryFieldRecordID        = "recordId"
	EntryFieldPreviousGroupID = "previousGroupId"
	EntryFieldGroupID         = "groupId"
	EntryFieldSharedWith      = "sharedWith"
	EntryFieldUserName        = "userName"
	EntryFieldUserID          = "userId"
	EntryFieldAction          = "action"
	EntryFieldTimestamp       = "timestamp"
	EntryFieldSharedAt        = "sharedAt"
	EntryFieldPermission      = "permission"
)

// HistoryEntry is one item of an append-only audit log. Only ID is always set.
type HistoryEntry struct {
	ID              string
	PreviousGroupID *string
	GroupID         *string
	SharedWith      *string
	UserName        *string
	UserID          *string
	Action          *string
	Timestamp       any
	SharedAt        any
	Extra           Record
}

// AuditViewModel is the rendered form of a HistoryEntry.
type AuditViewModel struct {
	EntryID          string     `json:"entry_id"`
	ActionType       ActionType `json:"action_type"`
	Icon             string     `json:"icon"`
	Color            string     `json:"color"`
	Narrative        string     `json:"narrative"`
	DisplayTimestamp string     `json:"display_timestamp"`
	Actor            string     `json:"actor"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
