package usecase

import (
	"context"

	"task-manager/internal/entities"
)

// AuthUsecaseInterface abstracts registration, login and token handling.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, actor *entities.Actor, user entities.NewUser) (*entities.Session, error)
	Login(ctx context.Context, email, password string) (*entities.Session, error)
	Authenticate(ctx context.Context, token string) (entities.TokenClaims, error)
	Logout(ctx context.Context, claims entities.TokenClaims) error
	Profile(ctx context.Context, actor entities.Actor) (*entities.UserDetails, error)
	UpdateProfile(ctx context.Context, actor entities.Actor, patch entities.UserPatch) (*entities.User, error)
	EnsureAdmin(ctx context.Context, admin entities.NewUser) (bool, error)
}

// UserUsecaseInterface abstracts user administration.
type UserUsecaseInterface interface {
	ListUsers(ctx context.Context, actor entities.Actor, filter entities.UserFilter) (entities.UserList, error)
	UserDetails(ctx context.Context, actor entities.Actor, userID string) (*entities.UserDetails, error)
	CreateUser(ctx context.Context, actor entities.Actor, user entities.NewUser) (*entities.User, error)
	UpdateUser(ctx context.Context, actor entities.Actor, userID string, patch entities.UserPatch) (*entities.User, error)
	DeleteUser(ctx context.Context, actor entities.Actor, userID string) error
	UserTasks(ctx context.Context, actor entities.Actor, userID string, filter entities.TaskFilter) (entities.TaskList, error)
	UserTeams(ctx context.Context, actor entities.Actor, userID string) ([]entities.Team, error)
	UserHistory(ctx context.Context, actor entities.Actor, userID string, page entities.Page) ([]entities.HistoryEntry, error)
	UserActivity(ctx context.Context, actor entities.Actor, userID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error)
}

// TeamUsecaseInterface abstracts team and membership operations.
type TeamUsecaseInterface interface {
	ListTeams(ctx context.Context, actor entities.Actor, page entities.Page) (entities.TeamList, error)
	TeamDetails(ctx context.Context, actor entities.Actor, teamID string) (*entities.TeamDetails, error)
	CreateTeam(ctx context.Context, actor entities.Actor, team entities.Team) (*entities.Team, error)
	UpdateTeam(ctx context.Context, actor entities.Actor, teamID string, patch entities.TeamPatch) (*entities.Team, error)
	DeleteTeam(ctx context.Context, actor entities.Actor, teamID string) error
	TeamMembers(ctx context.Context, actor entities.Actor, teamID string) ([]entities.TeamMember, error)
	AddMember(ctx context.Context, actor entities.Actor, teamID, userID string) ([]entities.TeamMember, error)
	RemoveMember(ctx context.Context, actor entities.Actor, teamID, userID string) error
	TeamTasks(ctx context.Context, actor entities.Actor, teamID string, filter entities.TaskFilter) (entities.TaskList, error)
	TeamStats(ctx context.Context, actor entities.Actor, teamID string) (entities.TeamStats, error)
	TeamHistory(ctx context.Context, actor entities.Actor, teamID string, page entities.Page) ([]entities.HistoryEntry, error)
	TeamActivity(ctx context.Context, actor entities.Actor, teamID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error)
}

// TaskUsecaseInterface abstracts task lifecycle operations.
type TaskUsecaseInterface interface {
	ListTasks(ctx context.Context, actor entities.Actor, filter entities.TaskFilter) (entities.TaskList, error)
	TaskDetails(ctx context.Context, actor entities.Actor, taskID string) (*entities.TaskDetails, error)
	CreateTask(ctx context.Context, actor entities.Actor, task entities.NewTask) (*entities.Task, error)
	UpdateTask(ctx context.Context, actor entities.Actor, taskID string, patch entities.TaskPatch) (*entities.Task, error)
	DeleteTask(ctx context.Context, actor entities.Actor, taskID string) error
	AssignTask(ctx context.Context, actor entities.Actor, taskID, userID string) (*entities.Task, error)
	ChangeTaskStatus(ctx context.Context, actor entities.Actor, taskID string, status entities.TaskStatus, reason string) (*entities.Task, error)
	TaskHistory(ctx context.Context, actor entities.Actor, taskID string, page entities.Page) (*entities.Task, []entities.HistoryEntry, error)
	RecentActivity(ctx context.Context, actor entities.Actor, page entities.Page) ([]entities.HistoryEntry, error)
}

// HistoryUsecaseInterface abstracts ledger-wide queries and retention.
type HistoryUsecaseInterface interface {
	ListHistory(ctx context.Context, actor entities.Actor, filter entities.HistoryFilter) ([]entities.HistoryEntry, error)
	PurgeHistory(ctx context.Context, actor entities.Actor, days int) (int64, error)
}
