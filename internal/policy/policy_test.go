package policy

import (
	"testing"

	"task-manager/internal/entities"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

var (
	admin    = entities.Actor{ID: "admin", Role: entities.RoleAdmin}
	creator  = entities.Actor{ID: "creator", Role: entities.RoleMember}
	assignee = entities.Actor{ID: "assignee", Role: entities.RoleMember}
	outsider = entities.Actor{ID: "outsider", Role: entities.RoleMember}
	task     = entities.Task{ID: "t1", TeamID: "team", CreatedBy: "creator", AssignedTo: ptr("assignee")}
)

func TestCanViewTask(t *testing.T) {
	tests := []struct {
		name     string
		actor    entities.Actor
		isMember bool
		want     bool
	}{
		{name: "admin", actor: admin, want: true},
		{name: "team member", actor: outsider, isMember: true, want: true},
		{name: "assignee", actor: assignee, want: true},
		{name: "creator", actor: creator, want: true},
		{name: "outsider", actor: outsider, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CanViewTask(tt.actor, task, tt.isMember))
		})
	}
}

func TestCanEditTask(t *testing.T) {
	require.True(t, CanEditTask(admin, task))
	require.True(t, CanEditTask(creator, task))
	require.True(t, CanEditTask(assignee, task))
	require.False(t, CanEditTask(outsider, task))

	unassigned := task
	unassigned.AssignedTo = nil
	require.False(t, CanEditTask(assignee, unassigned))
}

func TestCanDeleteTaskNarrowerThanEdit(t *testing.T) {
	require.True(t, CanEditTask(assignee, task))
	require.False(t, CanDeleteTask(assignee, task))

	require.True(t, CanDeleteTask(creator, task))
	require.True(t, CanDeleteTask(admin, task))
	require.False(t, CanDeleteTask(outsider, task))
}

func TestTeamAndUserManagementAdminOnly(t *testing.T) {
	require.True(t, CanManageTeams(admin))
	require.False(t, CanManageTeams(creator))
	require.True(t, CanViewAllTasks(admin))
	require.False(t, CanViewAllTasks(assignee))
	require.True(t, CanManageUsers(admin))
	require.False(t, CanManageUsers(creator))
	require.True(t, CanManageHistory(admin))
	require.False(t, CanManageHistory(creator))
}

func TestRequireTeamMembership(t *testing.T) {
	require.NoError(t, RequireTeamMembership(admin, false))
	require.NoError(t, RequireTeamMembership(outsider, true))

	err := RequireTeamMembership(outsider, false)
	require.ErrorIs(t, err, entities.ErrForbidden)
}

func TestCheckAssignee(t *testing.T) {
	require.NoError(t, CheckAssignee(admin, false))
	require.NoError(t, CheckAssignee(creator, true))

	err := CheckAssignee(creator, false)
	require.ErrorIs(t, err, entities.ErrAssigneeNotMember)
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	require.Contains(t, err.Error(), "assigned user must be a team member")
}

func TestCanGrantRole(t *testing.T) {
	require.NoError(t, CanGrantRole(nil, entities.RoleMember))
	require.NoError(t, CanGrantRole(&creator, entities.RoleMember))
	require.NoError(t, CanGrantRole(&admin, entities.RoleAdmin))

	require.ErrorIs(t, CanGrantRole(nil, entities.RoleAdmin), entities.ErrForbidden)
	require.ErrorIs(t, CanGrantRole(&creator, entities.RoleAdmin), entities.ErrForbidden)
}

func TestCanDeleteUser(t *testing.T) {
	require.NoError(t, CanDeleteUser(admin, "someone"))
	require.ErrorIs(t, CanDeleteUser(admin, admin.ID), entities.ErrSelfDeletion)
}
