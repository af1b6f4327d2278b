// Package api holds the JSON request and response bodies of the HTTP API.
package api

import "time"

// ErrorCode classifies an error response.
type ErrorCode string

const (
	INVALIDARGUMENT ErrorCode = "INVALID_ARGUMENT"
	UNAUTHORIZED    ErrorCode = "UNAUTHORIZED"
	FORBIDDEN       ErrorCode = "FORBIDDEN"
	NOTFOUND        ErrorCode = "NOT_FOUND"
	CONFLICT        ErrorCode = "CONFLICT"
	INTERNAL        ErrorCode = "INTERNAL"
)

// ErrorBody is the payload of ErrorResponse.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is returned by every failing endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// User is an account without credentials.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateUserRequest is a partial account update. Role is ignored on the
// profile endpoint.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type UserDetails struct {
	User
	Teams       []Team `json:"teams"`
	TasksCount  int    `json:"tasks_count"`
	RecentTasks []Task `json:"recent_tasks"`
}

type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type TeamMember struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

type TeamStats struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	ActiveMembers   int64 `json:"active_members"`
	TotalMembers    int64 `json:"total_members"`
}

type TeamDetails struct {
	Team
	Members     []TeamMember `json:"members"`
	TasksCount  int          `json:"tasks_count"`
	RecentTasks []Task       `json:"recent_tasks"`
	Stats       TeamStats    `json:"stats"`
}

type TeamList struct {
	Teams []Team `json:"teams"`
	Total int    `json:"total"`
}

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     *string    `json:"assigned_to"`
	AssignedToName *string    `json:"assigned_to_name,omitempty"`
	TeamID         string     `json:"team_id"`
	TeamName       string     `json:"team_name,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedByName  string     `json:"created_by_name,omitempty"`
	DueDate        *time.Time `json:"due_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TaskRequest carries task creation and update fields. On update an empty
// description, assignee or due date clears the value.
type TaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
	TeamID      *string `json:"team_id"`
	DueDate     *string `json:"due_date"`
}

// AssignRequest sets the assignee. A null or empty user_id unassigns.
type AssignRequest struct {
	UserID *string `json:"user_id"`
}

type StatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type TaskDetails struct {
	Task
	History       []HistoryEntry `json:"history"`
	CanEdit       bool           `json:"can_edit"`
	IsOverdue     bool           `json:"is_overdue"`
	DaysRemaining *int           `json:"days_remaining"`
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

type HistoryEntry struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	ChangedBy       string    `json:"changed_by"`
	ChangedByName   *string   `json:"changed_by_name"`
	FieldChanged    string    `json:"field_changed"`
	OldValue        *string   `json:"old_value"`
	NewValue        *string   `json:"new_value"`
	Reason          string    `json:"reason"`
	ChangedAt       time.Time `json:"changed_at"`
	TaskTitle       *string   `json:"task_title,omitempty"`
	TeamName        *string   `json:"team_name,omitempty"`
	FormattedChange string    `json:"formatted_change"`
}

type TaskHistory struct {
	Task    Task           `json:"task"`
	History []HistoryEntry `json:"history"`
}

type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
