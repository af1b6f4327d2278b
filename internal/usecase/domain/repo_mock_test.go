package domain

import (
	"context"
	"time"

	"task-manager/internal/entities"
	"task-manager/internal/repository"

	"github.com/stretchr/testify/mock"
)

type repoMock struct{ mock.Mock }

var _ repository.Repository = (*repoMock)(nil)

func (m *repoMock) OnStart(_ context.Context) error { return nil }
func (m *repoMock) OnStop(_ context.Context) error  { return nil }
func (m *repoMock) Ping(_ context.Context) error    { return nil }

func (m *repoMock) CreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *repoMock) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *repoMock) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *repoMock) ListUsers(ctx context.Context, filter entities.UserFilter) (entities.UserList, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(entities.UserList), args.Error(1)
}

func (m *repoMock) UpdateUser(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *repoMock) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *repoMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *repoMock) CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error) {
	args := m.Called(ctx, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Team), args.Error(1)
}

func (m *repoMock) GetTeam(ctx context.Context, teamID string) (*entities.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Team), args.Error(1)
}

func (m *repoMock) ListTeams(ctx context.Context, page entities.Page) (entities.TeamList, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(entities.TeamList), args.Error(1)
}

func (m *repoMock) ListUserTeams(ctx context.Context, userID string) ([]entities.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Team), args.Error(1)
}

func (m *repoMock) UpdateTeam(ctx context.Context, teamID string, patch entities.TeamPatch) (*entities.Team, error) {
	args := m.Called(ctx, teamID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Team), args.Error(1)
}

func (m *repoMock) DeleteTeam(ctx context.Context, teamID string) error {
	return m.Called(ctx, teamID).Error(0)
}

func (m *repoMock) CountActiveTasks(ctx context.Context, teamID string, assignee *string) (int, error) {
	args := m.Called(ctx, teamID, assignee)
	return args.Int(0), args.Error(1)
}

func (m *repoMock) TeamMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TeamMember), args.Error(1)
}

func (m *repoMock) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *repoMock) AddMember(ctx context.Context, teamID, userID string) error {
	return m.Called(ctx, teamID, userID).Error(0)
}

func (m *repoMock) RemoveMember(ctx context.Context, teamID, userID string) error {
	return m.Called(ctx, teamID, userID).Error(0)
}

func (m *repoMock) TeamStats(ctx context.Context, teamID string) (entities.TeamStats, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(entities.TeamStats), args.Error(1)
}

func (m *repoMock) CreateTask(ctx context.Context, task entities.NewTask, actorID string) (*entities.Task, error) {
	args := m.Called(ctx, task, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *repoMock) GetTask(ctx context.Context, taskID string) (*entities.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *repoMock) ListTasks(ctx context.Context, filter entities.TaskFilter) (entities.TaskList, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(entities.TaskList), args.Error(1)
}

func (m *repoMock) UpdateTask(ctx context.Context, taskID string, patch entities.TaskPatch, actorID string) (*entities.Task, []entities.FieldChange, error) {
	args := m.Called(ctx, taskID, patch, actorID)
	var task *entities.Task
	if args.Get(0) != nil {
		task = args.Get(0).(*entities.Task)
	}
	var changes []entities.FieldChange
	if args.Get(1) != nil {
		changes = args.Get(1).([]entities.FieldChange)
	}
	return task, changes, args.Error(2)
}

func (m *repoMock) AssignTask(ctx context.Context, taskID string, assignee *string, actorID string) (*entities.Task, error) {
	args := m.Called(ctx, taskID, assignee, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *repoMock) ChangeTaskStatus(ctx context.Context, taskID string, status entities.TaskStatus, reason, actorID string) (*entities.Task, error) {
	args := m.Called(ctx, taskID, status, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *repoMock) DeleteTask(ctx context.Context, taskID string) error {
	return m.Called(ctx, taskID).Error(0)
}

func (m *repoMock) ListHistory(ctx context.Context, filter entities.HistoryFilter) ([]entities.HistoryEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.HistoryEntry), args.Error(1)
}

func (m *repoMock) ActivityStatsByUser(ctx context.Context, userID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ActivityStat), args.Error(1)
}

func (m *repoMock) ActivityStatsByTeam(ctx context.Context, teamID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	args := m.Called(ctx, teamID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ActivityStat), args.Error(1)
}

func (m *repoMock) PurgeHistory(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return entities.ErrInvalidCredentials
	}
	return nil
}

type fakeTokens struct {
	claims entities.TokenClaims
	err    error
}

func (f fakeTokens) Issue(user entities.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (f fakeTokens) Verify(string) (entities.TokenClaims, error) {
	return f.claims, f.err
}

type fakeRevoker struct{ revoked map[string]bool }

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]bool{}
	}
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], nil
}

type countingRecorder struct {
	denied  map[string]int
	written map[string]int
	purged  int64
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{denied: map[string]int{}, written: map[string]int{}}
}

func (r *countingRecorder) Denied(op string)                   { r.denied[op]++ }
func (r *countingRecorder) HistoryWritten(field string, n int) { r.written[field] += n }
func (r *countingRecorder) HistoryPurged(n int64)              { r.purged += n }
