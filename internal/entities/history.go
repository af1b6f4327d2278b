package entities

import (
	"fmt"
	"time"
)

// HistoryEntry is an immutable audit trail entry for a task mutation.
type HistoryEntry struct {
	ID            string
	TaskID        string
	ChangedBy     string
	Field         string
	OldValue      *string
	NewValue      *string
	Reason        string
	ChangedAt     time.Time
	ChangedByName *string
	TaskTitle     *string
	TeamName      *string
}

var fieldLabels = map[string]string{
	FieldCreated:     "Created",
	FieldTitle:       "Title",
	FieldDescription: "Description",
	FieldStatus:      "Status",
	FieldPriority:    "Priority",
	FieldAssignedTo:  "Assignee",
	FieldDueDate:     "Due date",
}

// FormattedChange renders the entry for display, e.g. "Status: Pending → Completed".
func (h HistoryEntry) FormattedChange() string {
	label, ok := fieldLabels[h.Field]
	if !ok {
		label = h.Field
	}
	if h.Field == FieldCreated {
		return fmt.Sprintf("%s: %s", label, orEmpty(h.NewValue))
	}
	return fmt.Sprintf("%s: %s → %s", label, orEmpty(h.OldValue), orEmpty(h.NewValue))
}

func orEmpty(s *string) string {
	if s == nil || *s == "" {
		return "empty"
	}
	return *s
}

// HistoryFilter selects ledger entries. Every set field narrows the result.
// VisibleTo keeps only entries of tasks in the user's teams.
type HistoryFilter struct {
	TaskID    *string
	ChangedBy *string
	Field     *string
	TeamID    *string
	VisibleTo *string
	Page
}

// ActivityFilter bounds activity aggregates in time.
type ActivityFilter struct {
	From *time.Time
	To   *time.Time
}

// ActivityStat counts changes of one field on one day, optionally by actor.
type ActivityStat struct {
	Field         string    `json:"field_changed"`
	ChangeCount   int64     `json:"change_count"`
	ChangeDate    time.Time `json:"change_date"`
	ChangedByName *string   `json:"changed_by_name,omitempty"`
}

// RetentionCutoff returns the instant before which entries are purged.
func RetentionCutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
