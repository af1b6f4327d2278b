package postgres

import (
	"context"
	"fmt"
	"time"

	"task-manager/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertHistoryQuery = `
INSERT INTO task_history(id, task_id, changed_by, field_changed, old_value, new_value, reason, changed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, clock_timestamp())`
	historySelect = `
SELECT h.id, h.task_id, h.changed_by, h.field_changed, h.old_value, h.new_value, h.reason, h.changed_at,
       u.name, t.title, tm.name
FROM task_history h
LEFT JOIN users u ON u.id = h.changed_by
LEFT JOIN tasks t ON t.id = h.task_id
LEFT JOIN teams tm ON tm.id = t.team_id`
	userActivityQuery = `
SELECT h.field_changed, COUNT(*) AS change_count, DATE(h.changed_at) AS change_date
FROM task_history h`
	teamActivityQuery = `
SELECT h.field_changed, COUNT(*) AS change_count, DATE(h.changed_at) AS change_date, u.name
FROM task_history h
JOIN tasks t ON t.id = h.task_id
LEFT JOIN users u ON u.id = h.changed_by`
	purgeHistoryQuery = `DELETE FROM task_history WHERE changed_at < $1`
)

type historyRecord struct {
	TaskID    string
	ChangedBy string
	Field     string
	OldValue  *string
	NewValue  *string
	Reason    string
}

// insertHistory appends one ledger entry inside the caller's transaction.
// clock_timestamp keeps entries of one transaction in write order.
func insertHistory(ctx context.Context, tx pgx.Tx, r historyRecord) error {
	if _, err := tx.Exec(ctx, insertHistoryQuery, uuid.NewString(), r.TaskID, r.ChangedBy, r.Field, r.OldValue, r.NewValue, r.Reason); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListHistory returns ledger entries matching every set filter field, newest first.
func (p *Postgres) ListHistory(ctx context.Context, filter entities.HistoryFilter) ([]entities.HistoryEntry, error) {
	entries := make([]entities.HistoryEntry, 0)

	var cond conditions
	for _, f := range []struct {
		column string
		value  *string
	}{
		{"h.task_id", filter.TaskID},
		{"h.changed_by", filter.ChangedBy},
		{"t.team_id", filter.TeamID},
	} {
		if f.value == nil {
			continue
		}
		if !validID(*f.value) {
			return entries, nil
		}
		cond.add(f.column+" = ?", *f.value)
	}
	if filter.Field != nil {
		cond.add("h.field_changed = ?", *filter.Field)
	}
	if filter.VisibleTo != nil {
		if !validID(*filter.VisibleTo) {
			return entries, nil
		}
		cond.add("t.team_id IN (SELECT team_id FROM team_members WHERE user_id = ?)", *filter.VisibleTo)
	}

	limit, args := cond.paginate(filter.Page)
	rows, err := p.db.Query(ctx, historySelect+cond.where()+` ORDER BY h.changed_at DESC`+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h entities.HistoryEntry
		if err := rows.Scan(&h.ID, &h.TaskID, &h.ChangedBy, &h.Field, &h.OldValue, &h.NewValue, &h.Reason, &h.ChangedAt,
			&h.ChangedByName, &h.TaskTitle, &h.TeamName); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// ActivityStatsByUser counts a user's changes per field and day.
func (p *Postgres) ActivityStatsByUser(ctx context.Context, userID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	if !validID(userID) {
		return make([]entities.ActivityStat, 0), nil
	}

	var cond conditions
	cond.add("h.changed_by = ?", userID)
	addActivityRange(&cond, filter)

	query := userActivityQuery + cond.where() +
		` GROUP BY h.field_changed, DATE(h.changed_at) ORDER BY change_date DESC, change_count DESC`
	return p.queryActivity(ctx, query, false, cond.args...)
}

// ActivityStatsByTeam counts changes on the team's tasks per field, day and actor.
func (p *Postgres) ActivityStatsByTeam(ctx context.Context, teamID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	if !validID(teamID) {
		return make([]entities.ActivityStat, 0), nil
	}

	var cond conditions
	cond.add("t.team_id = ?", teamID)
	addActivityRange(&cond, filter)

	query := teamActivityQuery + cond.where() +
		` GROUP BY h.field_changed, DATE(h.changed_at), u.name ORDER BY change_date DESC, change_count DESC`
	return p.queryActivity(ctx, query, true, cond.args...)
}

func addActivityRange(cond *conditions, filter entities.ActivityFilter) {
	if filter.From != nil {
		cond.add("h.changed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		cond.add("h.changed_at <= ?", *filter.To)
	}
}

func (p *Postgres) queryActivity(ctx context.Context, query string, withActor bool, args ...any) ([]entities.ActivityStat, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("activity stats: %w", err)
	}
	defer rows.Close()

	stats := make([]entities.ActivityStat, 0)
	for rows.Next() {
		var s entities.ActivityStat
		dest := []any{&s.Field, &s.ChangeCount, &s.ChangeDate}
		if withActor {
			dest = append(dest, &s.ChangedByName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan activity stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity stats: %w", err)
	}
	return stats, nil
}

// PurgeHistory deletes entries written before the cutoff and returns how many went.
func (p *Postgres) PurgeHistory(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, purgeHistoryQuery, before)
	if err != nil {
		p.log.Errorw("failed to purge history", "error", err, "before", before)
		return 0, fmt.Errorf("purge history: %w", err)
	}

	p.log.Infow("history purged", "before", before, "deleted", tag.RowsAffected())
	return tag.RowsAffected(), nil
}
