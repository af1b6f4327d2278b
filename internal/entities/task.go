package entities

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TaskStatus enumerates task states. Any status may follow any other.
type TaskStatus string

const (
	// TaskStatusPending is the default status of a new task.
	TaskStatusPending TaskStatus = "Pending"
	// TaskStatusInProgress marks work in progress.
	TaskStatusInProgress TaskStatus = "InProgress"
	// TaskStatusCompleted is the only terminal status.
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s ends the task lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted
}

// TaskPriority enumerates task priorities.
type TaskPriority string

const (
	// TaskPriorityHigh is the highest priority.
	TaskPriorityHigh TaskPriority = "High"
	// TaskPriorityMedium is the default priority.
	TaskPriorityMedium TaskPriority = "Medium"
	// TaskPriorityLow is the lowest priority.
	TaskPriorityLow TaskPriority = "Low"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

// History field names.
const (
	FieldCreated     = "created"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldAssignedTo  = "assigned_to"
	FieldDueDate     = "due_date"
)

// History markers written by task mutations.
const (
	CreatedValue  = "task created"
	CreatedReason = "initial task creation"
	AssignReason  = "task reassigned"
)

const minTitleLen = 3

// Task is a unit of work owned by a team.
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *string
	TeamID      string
	CreatedBy   string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	AssignedToName *string
	CreatedByName  string
	TeamName       string
}

// IsOverdue reports whether the due date has passed and the task is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// DaysRemaining returns the whole days until the due date, rounded up, or nil without a due date.
func (t Task) DaysRemaining(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	days := int(math.Ceil(float64(t.DueDate.Sub(now)) / float64(24*time.Hour)))
	return &days
}

// NewTask is task creation input.
type NewTask struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *string
	TeamID      string
	DueDate     *time.Time
}

// Normalize trims text fields and applies status and priority defaults.
func (n *NewTask) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = trimOptional(n.Description)
	n.AssignedTo = trimOptional(n.AssignedTo)
	n.TeamID = strings.TrimSpace(n.TeamID)
	if n.Status == "" {
		n.Status = TaskStatusPending
	}
	if n.Priority == "" {
		n.Priority = TaskPriorityMedium
	}
}

// Validate checks title, team, status and priority.
func (n NewTask) Validate() error {
	if n.Title == "" || n.TeamID == "" {
		return fmt.Errorf("%w: title and team_id are required", ErrInvalidArgument)
	}
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	if !n.Status.Valid() {
		return invalidStatus()
	}
	if !n.Priority.Valid() {
		return invalidPriority()
	}
	return nil
}

// TaskPatch is a partial task update. Nil fields are absent. An empty
// Description or AssignedTo clears the column; ClearDueDate clears the due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *TaskStatus
	Priority     *TaskPriority
	AssignedTo   *string
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the patch carries no field.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.AssignedTo == nil && p.DueDate == nil && !p.ClearDueDate
}

// Normalize trims text fields.
func (p *TaskPatch) Normalize() {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.AssignedTo != nil {
		assignee := strings.TrimSpace(*p.AssignedTo)
		p.AssignedTo = &assignee
	}
}

// Validate checks every present field.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalidStatus()
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalidPriority()
	}
	if p.DueDate != nil && p.ClearDueDate {
		return fmt.Errorf("%w: due_date cannot be set and cleared at once", ErrInvalidArgument)
	}
	return nil
}

// Assignee returns the assignee the patch sets, or nil when it leaves or clears it.
func (p TaskPatch) Assignee() *string {
	if p.AssignedTo == nil || *p.AssignedTo == "" {
		return nil
	}
	return p.AssignedTo
}

// FieldChange is one mutable field whose submitted value differs from the stored one.
type FieldChange struct {
	Field    string
	OldValue *string
	NewValue *string
}

// Diff applies patch to t and returns the resulting task with the list of
// fields that actually changed, in a fixed order. Fields whose submitted value
// equals the stored one are skipped.
func Diff(t Task, patch TaskPatch) (Task, []FieldChange) {
	changes := make([]FieldChange, 0)

	if patch.Title != nil && *patch.Title != t.Title {
		changes = append(changes, FieldChange{Field: FieldTitle, OldValue: strPtr(t.Title), NewValue: strPtr(*patch.Title)})
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		next := emptyToNil(*patch.Description)
		if !equalStrPtr(t.Description, next) {
			changes = append(changes, FieldChange{Field: FieldDescription, OldValue: t.Description, NewValue: next})
			t.Description = next
		}
	}
	if patch.Status != nil && *patch.Status != t.Status {
		changes = append(changes, FieldChange{Field: FieldStatus, OldValue: strPtr(string(t.Status)), NewValue: strPtr(string(*patch.Status))})
		t.Status = *patch.Status
	}
	if patch.Priority != nil && *patch.Priority != t.Priority {
		changes = append(changes, FieldChange{Field: FieldPriority, OldValue: strPtr(string(t.Priority)), NewValue: strPtr(string(*patch.Priority))})
		t.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		next := emptyToNil(*patch.AssignedTo)
		if !equalStrPtr(t.AssignedTo, next) {
			changes = append(changes, FieldChange{Field: FieldAssignedTo, OldValue: t.AssignedTo, NewValue: next})
			t.AssignedTo = next
		}
	}
	if patch.DueDate != nil || patch.ClearDueDate {
		var next *time.Time
		if patch.DueDate != nil {
			d := *patch.DueDate
			next = &d
		}
		if !equalTimePtr(t.DueDate, next) {
			changes = append(changes, FieldChange{Field: FieldDueDate, OldValue: FormatDueDate(t.DueDate), NewValue: FormatDueDate(next)})
			t.DueDate = next
		}
	}

	return t, changes
}

// FieldUpdateReason is the history reason for a generic field update.
func FieldUpdateReason(field string) string {
	return fmt.Sprintf("field %s updated", field)
}

// StatusChangeReason is the default history reason for a status change.
func StatusChangeReason(from, to TaskStatus) string {
	return fmt.Sprintf("status changed from %s to %s", from, to)
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid due_date format", ErrInvalidArgument)
}

// FormatDueDate renders a due date as stored in history values.
func FormatDueDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// TaskFilter narrows task listings. VisibleTo restricts results to tasks of
// the user's teams or assigned to them.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssignedTo *string
	TeamID     *string
	CreatedBy  *string
	VisibleTo  *string
	Page
}

// TaskDetails is a task with its history and actor-relative flags.
type TaskDetails struct {
	Task          Task
	History       []HistoryEntry
	CanEdit       bool
	IsOverdue     bool
	DaysRemaining *int
}

// TaskList is a page of tasks with the unpaginated total.
type TaskList struct {
	Tasks []Task
	Total int
}

func validateTitle(title string) error {
	if len([]rune(title)) < minTitleLen {
		return fmt.Errorf("%w: title must be at least %d characters", ErrInvalidArgument, minTitleLen)
	}
	return nil
}

func invalidStatus() error {
	return fmt.Errorf("%w: status must be one of %s, %s, %s",
		ErrInvalidArgument, TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted)
}

func invalidPriority() error {
	return fmt.Errorf("%w: priority must be one of %s, %s, %s",
		ErrInvalidArgument, TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow)
}

func strPtr(s string) *string {
	return &s
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
