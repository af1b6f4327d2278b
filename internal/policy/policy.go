// Package policy holds the access decisions for users, teams and tasks.
//
// Every function is pure: callers fetch the facts (actor, task, membership)
// and the policy answers. No handler or usecase branches on roles directly.
package policy

import (
	"fmt"

	"task-manager/internal/entities"
)

// Operation names a guarded action. It labels denials in logs and metrics.
type Operation string

const (
	OpViewTask      Operation = "view_task"
	OpEditTask      Operation = "edit_task"
	OpDeleteTask    Operation = "delete_task"
	OpAssignTask    Operation = "assign_task"
	OpChangeStatus  Operation = "change_status"
	OpViewTeam      Operation = "view_team"
	OpManageTeam    Operation = "manage_team"
	OpManageUsers   Operation = "manage_users"
	OpGrantRole     Operation = "grant_role"
	OpManageHistory Operation = "manage_history"
	OpCreateTask    Operation = "create_task"
)

// CanViewTask allows admins, team members, the assignee and the creator.
func CanViewTask(actor entities.Actor, task entities.Task, isTeamMember bool) bool {
	if actor.IsAdmin() || isTeamMember {
		return true
	}
	return isAssignee(actor, task) || actor.ID == task.CreatedBy
}

// CanEditTask allows admins, the assignee and the creator. It also governs
// assignment and status changes.
func CanEditTask(actor entities.Actor, task entities.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return isAssignee(actor, task) || actor.ID == task.CreatedBy
}

// CanDeleteTask allows admins and the creator. Being the assignee is not enough.
func CanDeleteTask(actor entities.Actor, task entities.Task) bool {
	return actor.IsAdmin() || actor.ID == task.CreatedBy
}

// CanViewAllTasks reports whether listings may skip the visibility filter.
func CanViewAllTasks(actor entities.Actor) bool {
	return actor.IsAdmin()
}

// CanManageTeams gates team creation, edits, deletion and membership changes.
func CanManageTeams(actor entities.Actor) bool {
	return actor.IsAdmin()
}

// CanManageUsers gates the user administration surface.
func CanManageUsers(actor entities.Actor) bool {
	return actor.IsAdmin()
}

// CanManageHistory gates ledger-wide queries and retention purges.
func CanManageHistory(actor entities.Actor) bool {
	return actor.IsAdmin()
}

// RequireTeamMembership lets admins through and otherwise requires membership.
func RequireTeamMembership(actor entities.Actor, isMember bool) error {
	if actor.IsAdmin() || isMember {
		return nil
	}
	return Deny(OpViewTeam)
}

// CheckAssignee rejects non-admin assignments to users outside the task's team.
func CheckAssignee(actor entities.Actor, assigneeIsMember bool) error {
	if actor.IsAdmin() || assigneeIsMember {
		return nil
	}
	return entities.ErrAssigneeNotMember
}

// CanGrantRole allows anyone to create members and only authenticated admins
// to create or promote admins. actor is nil for anonymous registration.
func CanGrantRole(actor *entities.Actor, role entities.Role) error {
	if role != entities.RoleAdmin {
		return nil
	}
	if actor != nil && actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: only administrators can create administrators", entities.ErrForbidden)
}

// CanDeleteUser rejects self-deletion.
func CanDeleteUser(actor entities.Actor, targetID string) error {
	if actor.ID == targetID {
		return entities.ErrSelfDeletion
	}
	return nil
}

// Deny builds the forbidden error for op.
func Deny(op Operation) error {
	return fmt.Errorf("%w: %s", entities.ErrForbidden, op)
}

func isAssignee(actor entities.Actor, task entities.Task) bool {
	return task.AssignedTo != nil && *task.AssignedTo == actor.ID
}
