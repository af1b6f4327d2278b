// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"
	"time"

	"task-manager/internal/entities"
)

// LifecycleInterface describes storage startup/shutdown hooks and liveness.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
	Ping(ctx context.Context) error
}

// UserInterface exposes user-related operations.
type UserInterface interface {
	CreateUser(ctx context.Context, user entities.User) (*entities.User, error)
	GetUser(ctx context.Context, userID string) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	ListUsers(ctx context.Context, filter entities.UserFilter) (entities.UserList, error)
	UpdateUser(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error)
	DeleteUser(ctx context.Context, userID string) error
	CountUsers(ctx context.Context) (int, error)
}

// TeamInterface exposes team and membership operations.
type TeamInterface interface {
	CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error)
	GetTeam(ctx context.Context, teamID string) (*entities.Team, error)
	ListTeams(ctx context.Context, page entities.Page) (entities.TeamList, error)
	ListUserTeams(ctx context.Context, userID string) ([]entities.Team, error)
	UpdateTeam(ctx context.Context, teamID string, patch entities.TeamPatch) (*entities.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
	CountActiveTasks(ctx context.Context, teamID string, assignee *string) (int, error)
	TeamMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	TeamStats(ctx context.Context, teamID string) (entities.TeamStats, error)
}

// TaskInterface exposes task operations. Every mutation records its history
// entries in the same transaction.
type TaskInterface interface {
	CreateTask(ctx context.Context, task entities.NewTask, actorID string) (*entities.Task, error)
	GetTask(ctx context.Context, taskID string) (*entities.Task, error)
	ListTasks(ctx context.Context, filter entities.TaskFilter) (entities.TaskList, error)
	UpdateTask(ctx context.Context, taskID string, patch entities.TaskPatch, actorID string) (*entities.Task, []entities.FieldChange, error)
	AssignTask(ctx context.Context, taskID string, assignee *string, actorID string) (*entities.Task, error)
	ChangeTaskStatus(ctx context.Context, taskID string, status entities.TaskStatus, reason, actorID string) (*entities.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// HistoryInterface exposes ledger queries and retention.
type HistoryInterface interface {
	ListHistory(ctx context.Context, filter entities.HistoryFilter) ([]entities.HistoryEntry, error)
	ActivityStatsByUser(ctx context.Context, userID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error)
	ActivityStatsByTeam(ctx context.Context, teamID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error)
	PurgeHistory(ctx context.Context, before time.Time) (int64, error)
}
