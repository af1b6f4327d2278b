package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"task-manager/config"
	"task-manager/internal/entities"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	admin := createUser(t, repo, "Admin", "admin@example.com", entities.RoleAdmin)
	alice := createUser(t, repo, "Alice", "alice@example.com", entities.RoleMember)

	team, err := repo.CreateTeam(ctx, entities.Team{Name: "Backend", CreatedBy: admin.ID})
	require.NoError(t, err)
	require.Equal(t, "Admin", team.CreatedByName)

	isMember, err := repo.IsMember(ctx, team.ID, admin.ID)
	require.NoError(t, err)
	require.True(t, isMember, "creator is enrolled on team creation")

	require.NoError(t, repo.AddMember(ctx, team.ID, alice.ID))
	require.ErrorIs(t, repo.AddMember(ctx, team.ID, alice.ID), entities.ErrAlreadyMember)

	task, err := repo.CreateTask(ctx, entities.NewTask{
		Title:    "Write docs",
		TeamID:   team.ID,
		Status:   entities.TaskStatusPending,
		Priority: entities.TaskPriorityMedium,
	}, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Backend", task.TeamName)

	history, err := repo.ListHistory(ctx, entities.HistoryFilter{TaskID: &task.ID, Page: entities.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, entities.FieldCreated, history[0].Field)
	require.Equal(t, entities.CreatedValue, *history[0].NewValue)
	require.Equal(t, entities.CreatedReason, history[0].Reason)

	title := "Write API docs"
	priority := entities.TaskPriorityHigh
	updated, changes, err := repo.UpdateTask(ctx, task.ID, entities.TaskPatch{Title: &title, Priority: &priority}, admin.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, title, updated.Title)

	_, changes, err = repo.UpdateTask(ctx, task.ID, entities.TaskPatch{Title: &title}, admin.ID)
	require.NoError(t, err)
	require.Empty(t, changes)

	assigned, err := repo.AssignTask(ctx, task.ID, &alice.ID, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", *assigned.AssignedToName)

	_, err = repo.AssignTask(ctx, task.ID, &alice.ID, admin.ID)
	require.NoError(t, err)

	_, err = repo.ChangeTaskStatus(ctx, task.ID, entities.TaskStatusInProgress, "", alice.ID)
	require.NoError(t, err)

	history, err = repo.ListHistory(ctx, entities.HistoryFilter{TaskID: &task.ID, Page: entities.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, history, 6)
	require.Equal(t, entities.FieldStatus, history[0].Field)
	require.Equal(t, "status changed from Pending to InProgress", history[0].Reason)
	require.Equal(t, "Alice", *history[0].ChangedByName)
	require.Equal(t, entities.FieldAssignedTo, history[1].Field)
	require.Equal(t, entities.FieldAssignedTo, history[2].Field)
	require.Nil(t, history[2].OldValue)

	active, err := repo.CountActiveTasks(ctx, team.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 1, active)
	active, err = repo.CountActiveTasks(ctx, team.ID, &alice.ID)
	require.NoError(t, err)
	require.Equal(t, 1, active)
	active, err = repo.CountActiveTasks(ctx, team.ID, &admin.ID)
	require.NoError(t, err)
	require.Zero(t, active)

	stats, err := repo.TeamStats(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, entities.TeamStats{TotalTasks: 1, InProgressTasks: 1, ActiveMembers: 1, TotalMembers: 2}, stats)

	activity, err := repo.ActivityStatsByTeam(ctx, team.ID, entities.ActivityFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, activity)

	_, err = repo.ChangeTaskStatus(ctx, task.ID, entities.TaskStatusCompleted, "done", alice.ID)
	require.NoError(t, err)
	active, err = repo.CountActiveTasks(ctx, team.ID, nil)
	require.NoError(t, err)
	require.Zero(t, active)

	require.NoError(t, repo.RemoveMember(ctx, team.ID, alice.ID))
	require.ErrorIs(t, repo.RemoveMember(ctx, team.ID, alice.ID), entities.ErrNotMember)

	require.NoError(t, repo.DeleteTask(ctx, task.ID))
	_, err = repo.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, entities.ErrTaskNotFound)

	orphaned, err := repo.ListHistory(ctx, entities.HistoryFilter{TaskID: &task.ID, Page: entities.Page{Limit: 20}})
	require.NoError(t, err)
	require.Len(t, orphaned, 7, "history outlives the task")
	require.Nil(t, orphaned[0].TaskTitle)

	require.NoError(t, repo.DeleteTeam(ctx, team.ID))
	_, err = repo.GetTeam(ctx, team.ID)
	require.ErrorIs(t, err, entities.ErrTeamNotFound)
}

func TestUserIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	bob := createUser(t, repo, "Bob", "bob@example.com", entities.RoleMember)
	_, err := repo.CreateUser(ctx, entities.User{Name: "Bob 2", Email: "bob@example.com", PasswordHash: "x", Role: entities.RoleMember})
	require.ErrorIs(t, err, entities.ErrEmailTaken)

	byEmail, err := repo.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, bob.ID, byEmail.ID)

	role := entities.RoleAdmin
	name := "Robert"
	updated, err := repo.UpdateUser(ctx, bob.ID, entities.UserPatch{Name: &name, Role: &role})
	require.NoError(t, err)
	require.Equal(t, "Robert", updated.Name)
	require.Equal(t, entities.RoleAdmin, updated.Role)
	require.Equal(t, bob.PasswordHash, updated.PasswordHash)

	list, err := repo.ListUsers(ctx, entities.UserFilter{Role: &role, Page: entities.Page{Limit: 10}})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	team, err := repo.CreateTeam(ctx, entities.Team{Name: "Ops", CreatedBy: bob.ID})
	require.NoError(t, err)
	require.ErrorIs(t, repo.DeleteUser(ctx, bob.ID), entities.ErrUserHasRecords)

	carol := createUser(t, repo, "Carol", "carol@example.com", entities.RoleMember)
	require.NoError(t, repo.AddMember(ctx, team.ID, carol.ID))
	require.NoError(t, repo.DeleteUser(ctx, carol.ID))

	members, err := repo.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)

	_, err = repo.GetUser(ctx, "not-a-uuid")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPurgeHistoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	admin := createUser(t, repo, "Admin", "root@example.com", entities.RoleAdmin)
	team, err := repo.CreateTeam(ctx, entities.Team{Name: "QA", CreatedBy: admin.ID})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, entities.NewTask{Title: "Smoke", TeamID: team.ID, Status: entities.TaskStatusPending, Priority: entities.TaskPriorityLow}, admin.ID)
	require.NoError(t, err)

	deleted, err := repo.PurgeHistory(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, deleted)

	deleted, err = repo.PurgeHistory(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func startRepo(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })
	return repo
}

func createUser(t *testing.T, repo *Postgres, name, email string, role entities.Role) *entities.User {
	t.Helper()

	u, err := repo.CreateUser(context.Background(), entities.User{Name: name, Email: email, PasswordHash: "hash", Role: role})
	require.NoError(t, err)
	return u
}

func setupPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=task_manager_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)

	hostPort := resource.GetPort("5432/tcp")
	port, err := strconv.Atoi(hostPort)
	require.NoError(t, err)

	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.DirExists(t, migrationsDir)

	cfg := &config.Config{
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "task_manager_db",
			SSLMode:        "disable",
			MigrationsDir:  migrationsDir,
			QueryTimeout:   10 * time.Second,
			MigrateTimeout: 20 * time.Second,
			MaxConns:       4,
			MinConns:       1,
		},
	}

	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Ping()
	}))

	return cfg, func() { _ = pool.Purge(resource) }
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	l, _ := zap.NewDevelopment()
	t.Cleanup(func() { _ = l.Sync() })
	return l.Sugar()
}
