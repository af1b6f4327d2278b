package domain

import (
	"context"
	"fmt"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
)

// ListTasks returns tasks matching the filter. Non-admins only see tasks of
// their teams and tasks they are assigned to or created.
func (u *Usecase) ListTasks(ctx context.Context, actor entities.Actor, filter entities.TaskFilter) (entities.TaskList, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if filter.Status != nil && !filter.Status.Valid() {
		return entities.TaskList{}, fmt.Errorf("%w: unknown status filter", entities.ErrInvalidArgument)
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return entities.TaskList{}, fmt.Errorf("%w: unknown priority filter", entities.ErrInvalidArgument)
	}
	filter.VisibleTo = nil
	if !policy.CanViewAllTasks(actor) {
		filter.VisibleTo = &actor.ID
	}
	filter.Page = filter.Page.WithDefault(entities.DefaultPageLimit)
	return u.repo.ListTasks(ctx, filter)
}

// TaskDetails returns a task with its history and flags relative to the actor.
func (u *Usecase) TaskDetails(ctx context.Context, actor entities.Actor, taskID string) (*entities.TaskDetails, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	task, err := u.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	history, err := u.repo.ListHistory(ctx, entities.HistoryFilter{
		TaskID: &task.ID,
		Page:   entities.Page{Limit: entities.DefaultHistoryLimit},
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	return &entities.TaskDetails{
		Task:          *task,
		History:       history,
		CanEdit:       policy.CanEditTask(actor, *task),
		IsOverdue:     task.IsOverdue(now),
		DaysRemaining: task.DaysRemaining(now),
	}, nil
}

// CreateTask creates a task in a team the actor belongs to and records the
// creation entry.
func (u *Usecase) CreateTask(ctx context.Context, actor entities.Actor, task entities.NewTask) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetTeam(ctx, task.TeamID); err != nil {
		return nil, err
	}
	if err := u.requireMember(ctx, actor, task.TeamID, policy.OpCreateTask); err != nil {
		return nil, err
	}
	if task.AssignedTo != nil {
		if err := u.checkAssignee(ctx, actor, task.TeamID, *task.AssignedTo); err != nil {
			return nil, err
		}
	}

	created, err := u.repo.CreateTask(ctx, task, actor.ID)
	if err != nil {
		return nil, err
	}
	u.metrics.HistoryWritten(entities.FieldCreated, 1)
	return created, nil
}

// UpdateTask applies a partial update. Only fields whose value changes are
// written and recorded.
func (u *Usecase) UpdateTask(ctx context.Context, actor entities.Actor, taskID string, patch entities.TaskPatch) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	patch.Normalize()
	if patch.Empty() {
		return nil, errEmptyUpdate
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := u.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := u.check(policy.CanEditTask(actor, *task), actor, policy.OpEditTask, taskID); err != nil {
		return nil, err
	}
	if assignee := patch.Assignee(); assignee != nil {
		if err := u.checkAssignee(ctx, actor, task.TeamID, *assignee); err != nil {
			return nil, err
		}
	}

	updated, changes, err := u.repo.UpdateTask(ctx, taskID, patch, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range changes {
		u.metrics.HistoryWritten(c.Field, 1)
	}
	return updated, nil
}

// DeleteTask removes a task. Its history is kept.
func (u *Usecase) DeleteTask(ctx context.Context, actor entities.Actor, taskID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	task, err := u.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := u.check(policy.CanDeleteTask(actor, *task), actor, policy.OpDeleteTask, taskID); err != nil {
		return err
	}
	if err := u.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	u.log.Infow("task deleted", "task_id", taskID, "user_id", actor.ID)
	return nil
}

// AssignTask sets the assignee, or clears it when userID is empty. An entry
// is recorded even when the assignee does not change.
func (u *Usecase) AssignTask(ctx context.Context, actor entities.Actor, taskID, userID string) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	task, err := u.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := u.check(policy.CanEditTask(actor, *task), actor, policy.OpAssignTask, taskID); err != nil {
		return nil, err
	}

	var assignee *string
	if userID != "" {
		if err := u.checkAssignee(ctx, actor, task.TeamID, userID); err != nil {
			return nil, err
		}
		assignee = &userID
	}

	assigned, err := u.repo.AssignTask(ctx, taskID, assignee, actor.ID)
	if err != nil {
		return nil, err
	}
	u.metrics.HistoryWritten(entities.FieldAssignedTo, 1)
	return assigned, nil
}

// ChangeTaskStatus moves a task to any status and always records an entry.
// An empty reason gets a generated one.
func (u *Usecase) ChangeTaskStatus(ctx context.Context, actor entities.Actor, taskID string, status entities.TaskStatus, reason string) (*entities.Task, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of %s, %s, %s", entities.ErrInvalidArgument,
			entities.TaskStatusPending, entities.TaskStatusInProgress, entities.TaskStatusCompleted)
	}

	task, err := u.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := u.check(policy.CanEditTask(actor, *task), actor, policy.OpChangeStatus, taskID); err != nil {
		return nil, err
	}

	changed, err := u.repo.ChangeTaskStatus(ctx, taskID, status, reason, actor.ID)
	if err != nil {
		return nil, err
	}
	u.metrics.HistoryWritten(entities.FieldStatus, 1)
	return changed, nil
}

// TaskHistory returns a task with a page of its ledger entries, newest first.
func (u *Usecase) TaskHistory(ctx context.Context, actor entities.Actor, taskID string, page entities.Page) (*entities.Task, []entities.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	task, err := u.viewableTask(ctx, actor, taskID)
	if err != nil {
		return nil, nil, err
	}
	history, err := u.repo.ListHistory(ctx, entities.HistoryFilter{
		TaskID: &task.ID,
		Page:   page.WithDefault(entities.DefaultHistoryLimit),
	})
	if err != nil {
		return nil, nil, err
	}
	return task, history, nil
}

// RecentActivity is the latest ledger entries across every task the actor
// can see through their teams.
func (u *Usecase) RecentActivity(ctx context.Context, actor entities.Actor, page entities.Page) ([]entities.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	filter := entities.HistoryFilter{Page: page.WithDefault(entities.DefaultActivityLimit)}
	if !policy.CanManageHistory(actor) {
		filter.VisibleTo = &actor.ID
	}
	return u.repo.ListHistory(ctx, filter)
}

func (u *Usecase) viewableTask(ctx context.Context, actor entities.Actor, taskID string) (*entities.Task, error) {
	task, err := u.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	isMember, err := u.repo.IsMember(ctx, task.TeamID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := u.check(policy.CanViewTask(actor, *task, isMember), actor, policy.OpViewTask, taskID); err != nil {
		return nil, err
	}
	return task, nil
}

// checkAssignee requires the assignee to exist and, for non-admins, to belong
// to the task's team.
func (u *Usecase) checkAssignee(ctx context.Context, actor entities.Actor, teamID, assigneeID string) error {
	if _, err := u.repo.GetUser(ctx, assigneeID); err != nil {
		return err
	}
	isMember, err := u.repo.IsMember(ctx, teamID, assigneeID)
	if err != nil {
		return err
	}
	if err := policy.CheckAssignee(actor, isMember); err != nil {
		u.log.Infow("assignee outside team", "team_id", teamID, "assignee_id", assigneeID, "user_id", actor.ID)
		return err
	}
	return nil
}
