package handlers_fiber

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-manager/internal/entities"
	api "task-manager/internal/transport/http/api"
	"task-manager/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	adminActor  = entities.Actor{ID: "admin-1", Role: entities.RoleAdmin}
	memberActor = entities.Actor{ID: "member-1", Role: entities.RoleMember}
)

// ucMock stubs the usecase methods exercised below; any other call panics
// through the nil embedded interface.
type ucMock struct {
	mock.Mock
	usecase.InterfaceUsecase
}

func (m *ucMock) Authenticate(_ context.Context, token string) (entities.TokenClaims, error) {
	switch token {
	case "admin-token":
		return entities.TokenClaims{Actor: adminActor, TokenID: "jti-admin"}, nil
	case "member-token":
		return entities.TokenClaims{Actor: memberActor, TokenID: "jti-member"}, nil
	}
	return entities.TokenClaims{}, entities.ErrInvalidToken
}

func (m *ucMock) Register(ctx context.Context, actor *entities.Actor, user entities.NewUser) (*entities.Session, error) {
	args := m.Called(ctx, actor, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *ucMock) ListTasks(ctx context.Context, actor entities.Actor, filter entities.TaskFilter) (entities.TaskList, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).(entities.TaskList), args.Error(1)
}

func (m *ucMock) TaskDetails(ctx context.Context, actor entities.Actor, taskID string) (*entities.TaskDetails, error) {
	args := m.Called(ctx, actor, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TaskDetails), args.Error(1)
}

func (m *ucMock) CreateTask(ctx context.Context, actor entities.Actor, task entities.NewTask) (*entities.Task, error) {
	args := m.Called(ctx, actor, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *ucMock) AssignTask(ctx context.Context, actor entities.Actor, taskID, userID string) (*entities.Task, error) {
	args := m.Called(ctx, actor, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *ucMock) ChangeTaskStatus(ctx context.Context, actor entities.Actor, taskID string, status entities.TaskStatus, reason string) (*entities.Task, error) {
	args := m.Called(ctx, actor, taskID, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *ucMock) RemoveMember(ctx context.Context, actor entities.Actor, teamID, userID string) error {
	return m.Called(ctx, actor, teamID, userID).Error(0)
}

func (m *ucMock) PurgeHistory(ctx context.Context, actor entities.Actor, days int) (int64, error) {
	args := m.Called(ctx, actor, days)
	return args.Get(0).(int64), args.Error(1)
}

func newTestApp(uc *ucMock) *fiber.App {
	app := fiber.New()
	RegisterHandlers(app.Group("/api"), NewHandler(zap.NewNop().Sugar(), uc))
	return app
}

func do(t *testing.T, app *fiber.App, method, target, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRoutesRequireToken(t *testing.T) {
	app := newTestApp(&ucMock{})

	for _, target := range []string{"/api/tasks", "/api/teams/t1", "/api/users", "/api/history", "/api/auth/profile"} {
		resp := do(t, app, http.MethodGet, target, "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)

		resp = do(t, app, http.MethodGet, target, "forged", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, target)
	}
}

func TestRegisterPassesCaller(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	session := &entities.Session{Token: "tok", User: entities.User{ID: "u1", Role: entities.RoleMember}}
	uc.On("Register", mock.Anything, (*entities.Actor)(nil), mock.MatchedBy(func(u entities.NewUser) bool {
		return u.Email == "ann@example.com"
	})).Return(session, nil).Once()
	uc.On("Register", mock.Anything, &adminActor, mock.MatchedBy(func(u entities.NewUser) bool {
		return u.Role == entities.RoleAdmin
	})).Return(session, nil).Once()

	body := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`
	resp := do(t, app, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got api.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "tok", got.Token)

	body = `{"name":"Root","email":"root@example.com","password":"secret1","role":"admin"}`
	resp = do(t, app, http.MethodPost, "/api/auth/register", "admin-token", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uc.AssertExpectations(t)
}

func TestListTasksParsesFilters(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("ListTasks", mock.Anything, memberActor, mock.MatchedBy(func(f entities.TaskFilter) bool {
		return f.Status != nil && *f.Status == entities.TaskStatusPending &&
			f.TeamID != nil && *f.TeamID == "team-1" &&
			f.Priority == nil && f.Limit == 10 && f.Offset == 10
	})).Return(entities.TaskList{Tasks: []entities.Task{{ID: "t1"}}, Total: 11}, nil).Once()

	resp := do(t, app, http.MethodGet, "/api/tasks?status=Pending&team_id=team-1&page=2&limit=10", "member-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.TaskList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, 11, got.Total)
	require.Equal(t, 2, got.Page)
	require.Len(t, got.Tasks, 1)
	uc.AssertExpectations(t)
}

func TestGetTaskForbidden(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("TaskDetails", mock.Anything, memberActor, "t1").Return(nil, entities.ErrForbidden).Once()

	resp := do(t, app, http.MethodGet, "/api/tasks/t1", "member-token", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, api.FORBIDDEN, body.Error.Code)
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	resp := do(t, app, http.MethodPost, "/api/tasks", "member-token", `{"title":"Docs","team_id":"t","due_date":"next week"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	uc.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTaskParsesDueDate(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("CreateTask", mock.Anything, memberActor, mock.MatchedBy(func(n entities.NewTask) bool {
		return n.Title == "Docs" && n.DueDate != nil && n.DueDate.Format("2006-01-02") == "2025-05-01"
	})).Return(&entities.Task{ID: "t9", Title: "Docs"}, nil).Once()

	resp := do(t, app, http.MethodPost, "/api/tasks", "member-token", `{"title":"Docs","team_id":"t","due_date":"2025-05-01"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uc.AssertExpectations(t)
}

func TestStatusAndAssignAcceptPutAndPost(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("ChangeTaskStatus", mock.Anything, memberActor, "t1", entities.TaskStatusCompleted, "done").
		Return(&entities.Task{ID: "t1", Status: entities.TaskStatusCompleted}, nil).Twice()
	uc.On("AssignTask", mock.Anything, memberActor, "t1", "").
		Return(&entities.Task{ID: "t1"}, nil).Twice()

	for _, method := range []string{http.MethodPut, http.MethodPost} {
		resp := do(t, app, method, "/api/tasks/t1/status", "member-token", `{"status":"Completed","reason":"done"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, method)

		resp = do(t, app, method, "/api/tasks/t1/assign", "member-token", `{"user_id":null}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, method)
	}
	uc.AssertExpectations(t)
}

func TestRemoveMemberConflict(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("RemoveMember", mock.Anything, adminActor, "team-1", "u2").Return(entities.ErrMemberHasActiveTasks).Once()

	resp := do(t, app, http.MethodDelete, "/api/teams/team-1/members/u2", "admin-token", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	uc.AssertExpectations(t)
}

func TestPurgeHistoryDays(t *testing.T) {
	uc := &ucMock{}
	app := newTestApp(uc)

	uc.On("PurgeHistory", mock.Anything, adminActor, 30).Return(int64(12), nil).Once()

	resp := do(t, app, http.MethodDelete, "/api/history?days=30", "admin-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.PurgeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, int64(12), got.Deleted)

	resp = do(t, app, http.MethodDelete, "/api/history?days=soon", "admin-token", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	uc.AssertExpectations(t)
}
