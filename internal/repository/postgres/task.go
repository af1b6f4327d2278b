package postgres

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	taskSelect = `
SELECT t.id, t.title, t.description, t.status, t.priority, t.assigned_to, t.team_id, t.created_by,
       t.due_date, t.created_at, t.updated_at, au.name, COALESCE(cu.name, ''), COALESCE(tm.name, '')
FROM tasks t
LEFT JOIN users au ON au.id = t.assigned_to
LEFT JOIN users cu ON cu.id = t.created_by
LEFT JOIN teams tm ON tm.id = t.team_id`
	insertTaskQuery = `
INSERT INTO tasks(id, title, description, status, priority, assigned_to, team_id, created_by, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	selectTaskQuery = taskSelect + ` WHERE t.id = $1`
	lockTaskQuery   = `
SELECT id, title, description, status, priority, assigned_to, team_id, created_by, due_date, created_at, updated_at
FROM tasks WHERE id = $1 FOR UPDATE`
	updateTaskQuery = `
UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, assigned_to = $6, due_date = $7, updated_at = now()
WHERE id = $1`
	assignTaskQuery = `UPDATE tasks SET assigned_to = $2, updated_at = now() WHERE id = $1`
	statusTaskQuery = `UPDATE tasks SET status = $2, updated_at = now() WHERE id = $1`
	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1`
	countTasksQuery = `SELECT COUNT(*) FROM tasks t`
)

func scanTask(row pgx.Row) (*entities.Task, error) {
	var t entities.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.TeamID, &t.CreatedBy,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.AssignedToName, &t.CreatedByName, &t.TeamName); err != nil {
		return nil, err
	}
	return &t, nil
}

func lockTask(ctx context.Context, tx pgx.Tx, taskID string) (*entities.Task, error) {
	var t entities.Task
	err := tx.QueryRow(ctx, lockTaskQuery, taskID).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedTo, &t.TeamID, &t.CreatedBy, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("lock task: %w", err)
	}
	return &t, nil
}

// taskFKError maps a foreign key violation on tasks to the missing entity.
func taskFKError(err error) error {
	code, constraint := pgError(err)
	if code != codeForeignKeyViolation {
		return nil
	}
	if constraint == "tasks_team_id_fkey" {
		return entities.ErrTeamNotFound
	}
	return entities.ErrUserNotFound
}

// CreateTask inserts a task and its "created" history entry atomically.
func (p *Postgres) CreateTask(ctx context.Context, task entities.NewTask, actorID string) (*entities.Task, error) {
	if !validID(task.TeamID) {
		return nil, entities.ErrTeamNotFound
	}
	if task.AssignedTo != nil && !validID(*task.AssignedTo) {
		return nil, entities.ErrUserNotFound
	}

	id := uuid.NewString()
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTaskQuery, id, task.Title, task.Description, task.Status, task.Priority,
			task.AssignedTo, task.TeamID, actorID, task.DueDate); err != nil {
			if mapped := taskFKError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("insert task: %w", err)
		}
		created := entities.CreatedValue
		return insertHistory(ctx, tx, historyRecord{
			TaskID:    id,
			ChangedBy: actorID,
			Field:     entities.FieldCreated,
			NewValue:  &created,
			Reason:    entities.CreatedReason,
		})
	})
	if err != nil {
		p.log.Errorw("failed to create task", "error", err, "team_id", task.TeamID)
		return nil, err
	}

	p.log.Infow("task created", "task_id", id, "team_id", task.TeamID, "created_by", actorID)
	return p.GetTask(ctx, id)
}

// GetTask fetches a task with assignee, creator and team names.
func (p *Postgres) GetTask(ctx context.Context, taskID string) (*entities.Task, error) {
	if !validID(taskID) {
		return nil, entities.ErrTaskNotFound
	}
	t, err := scanTask(p.db.QueryRow(ctx, selectTaskQuery, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks returns a filtered page of tasks, newest first.
func (p *Postgres) ListTasks(ctx context.Context, filter entities.TaskFilter) (entities.TaskList, error) {
	res := entities.TaskList{Tasks: make([]entities.Task, 0)}

	var cond conditions
	if filter.Status != nil {
		cond.add("t.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		cond.add("t.priority = ?", *filter.Priority)
	}
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"t.assigned_to", filter.AssignedTo},
		{"t.team_id", filter.TeamID},
		{"t.created_by", filter.CreatedBy},
	} {
		if f.value == nil {
			continue
		}
		if !validID(*f.value) {
			return res, nil
		}
		cond.add(f.column+" = ?", *f.value)
	}
	if filter.VisibleTo != nil {
		if !validID(*filter.VisibleTo) {
			return res, nil
		}
		cond.add(`(t.team_id IN (SELECT team_id FROM team_members WHERE user_id = ?) OR t.assigned_to = ? OR t.created_by = ?)`,
			*filter.VisibleTo, *filter.VisibleTo, *filter.VisibleTo)
	}

	if err := p.db.QueryRow(ctx, countTasksQuery+cond.where(), cond.args...).Scan(&res.Total); err != nil {
		return res, fmt.Errorf("count tasks: %w", err)
	}

	limit, args := cond.paginate(filter.Page)
	rows, err := p.db.Query(ctx, taskSelect+cond.where()+` ORDER BY t.created_at DESC`+limit, args...)
	if err != nil {
		return res, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return res, fmt.Errorf("scan task: %w", err)
		}
		res.Tasks = append(res.Tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("iterate tasks: %w", err)
	}
	return res, nil
}

// UpdateTask applies patch under a row lock and records one history entry per
// changed field. A patch that changes nothing writes nothing.
func (p *Postgres) UpdateTask(ctx context.Context, taskID string, patch entities.TaskPatch, actorID string) (*entities.Task, []entities.FieldChange, error) {
	if !validID(taskID) {
		return nil, nil, entities.ErrTaskNotFound
	}
	if a := patch.Assignee(); a != nil && !validID(*a) {
		return nil, nil, entities.ErrUserNotFound
	}

	var changes []entities.FieldChange
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}

		var updated entities.Task
		updated, changes = entities.Diff(*current, patch)
		if len(changes) == 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, updateTaskQuery, taskID, updated.Title, updated.Description, updated.Status,
			updated.Priority, updated.AssignedTo, updated.DueDate); err != nil {
			if mapped := taskFKError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("update task: %w", err)
		}

		for _, c := range changes {
			if err := insertHistory(ctx, tx, historyRecord{
				TaskID:    taskID,
				ChangedBy: actorID,
				Field:     c.Field,
				OldValue:  c.OldValue,
				NewValue:  c.NewValue,
				Reason:    entities.FieldUpdateReason(c.Field),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		p.log.Errorw("failed to update task", "error", err, "task_id", taskID)
		return nil, nil, err
	}

	if len(changes) > 0 {
		p.log.Infow("task updated", "task_id", taskID, "changed_fields", len(changes), "changed_by", actorID)
	}
	t, err := p.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return t, changes, nil
}

// AssignTask sets or clears the assignee. The change is always recorded, even
// when the assignee stays the same.
func (p *Postgres) AssignTask(ctx context.Context, taskID string, assignee *string, actorID string) (*entities.Task, error) {
	if !validID(taskID) {
		return nil, entities.ErrTaskNotFound
	}
	if assignee != nil && !validID(*assignee) {
		return nil, entities.ErrUserNotFound
	}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, assignTaskQuery, taskID, assignee); err != nil {
			if mapped := taskFKError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("assign task: %w", err)
		}
		return insertHistory(ctx, tx, historyRecord{
			TaskID:    taskID,
			ChangedBy: actorID,
			Field:     entities.FieldAssignedTo,
			OldValue:  current.AssignedTo,
			NewValue:  assignee,
			Reason:    entities.AssignReason,
		})
	})
	if err != nil {
		p.log.Errorw("failed to assign task", "error", err, "task_id", taskID)
		return nil, err
	}

	p.log.Infow("task assigned", "task_id", taskID, "assigned_by", actorID)
	return p.GetTask(ctx, taskID)
}

// ChangeTaskStatus sets the status and always records the transition. An empty
// reason falls back to a generated one naming both statuses.
func (p *Postgres) ChangeTaskStatus(ctx context.Context, taskID string, status entities.TaskStatus, reason, actorID string) (*entities.Task, error) {
	if !validID(taskID) {
		return nil, entities.ErrTaskNotFound
	}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, statusTaskQuery, taskID, status); err != nil {
			return fmt.Errorf("change status: %w", err)
		}
		if reason == "" {
			reason = entities.StatusChangeReason(current.Status, status)
		}
		oldStatus, newStatus := string(current.Status), string(status)
		return insertHistory(ctx, tx, historyRecord{
			TaskID:    taskID,
			ChangedBy: actorID,
			Field:     entities.FieldStatus,
			OldValue:  &oldStatus,
			NewValue:  &newStatus,
			Reason:    reason,
		})
	})
	if err != nil {
		p.log.Errorw("failed to change task status", "error", err, "task_id", taskID)
		return nil, err
	}

	p.log.Infow("task status changed", "task_id", taskID, "status", status, "changed_by", actorID)
	return p.GetTask(ctx, taskID)
}

// DeleteTask removes a task. Its history entries are kept.
func (p *Postgres) DeleteTask(ctx context.Context, taskID string) error {
	if !validID(taskID) {
		return entities.ErrTaskNotFound
	}

	tag, err := p.db.Exec(ctx, deleteTaskQuery, taskID)
	if err != nil {
		p.log.Errorw("failed to delete task", "error", err, "task_id", taskID)
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTaskNotFound
	}

	p.log.Infow("task deleted", "task_id", taskID)
	return nil
}
