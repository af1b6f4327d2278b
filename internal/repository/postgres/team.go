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
	teamSelect = `
SELECT t.id, t.name, t.description, t.created_by, COALESCE(u.name, ''), t.created_at, t.updated_at
FROM teams t
LEFT JOIN users u ON u.id = t.created_by`
	insertTeamQuery   = `INSERT INTO teams(id, name, description, created_by) VALUES ($1, $2, $3, $4)`
	insertMemberQuery = `INSERT INTO team_members(team_id, user_id) VALUES ($1, $2)`
	selectTeamQuery   = teamSelect + ` WHERE t.id = $1`
	countTeamsQuery   = `SELECT COUNT(*) FROM teams`
	listTeamsQuery    = teamSelect + ` ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`
	userTeamsQuery    = teamSelect + `
JOIN team_members m ON m.team_id = t.id
WHERE m.user_id = $1
ORDER BY m.joined_at DESC`
	updateTeamQuery = `
UPDATE teams SET
    name = COALESCE($2, name),
    description = CASE WHEN $3::boolean THEN $4 ELSE description END,
    updated_at = now()
WHERE id = $1`
	deleteTeamQuery  = `DELETE FROM teams WHERE id = $1`
	teamMembersQuery = `
SELECT u.id, u.name, u.email, u.role, m.joined_at
FROM team_members m
JOIN users u ON u.id = m.user_id
WHERE m.team_id = $1
ORDER BY m.joined_at ASC`
	isMemberQuery     = `SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`
	deleteMemberQuery = `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	activeTasksQuery  = `
SELECT COUNT(*) FROM tasks
WHERE team_id = $1 AND status <> 'Completed' AND ($2::uuid IS NULL OR assigned_to = $2::uuid)`
	teamTaskStatsQuery = `
SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE status = 'Pending'),
    COUNT(*) FILTER (WHERE status = 'InProgress'),
    COUNT(*) FILTER (WHERE status = 'Completed'),
    COUNT(DISTINCT assigned_to)
FROM tasks
WHERE team_id = $1`
	teamMemberCountQuery = `SELECT COUNT(*) FROM team_members WHERE team_id = $1`
)

func scanTeam(row pgx.Row) (*entities.Team, error) {
	var t entities.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.CreatedByName, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTeam inserts a team and enrolls its creator as the first member.
func (p *Postgres) CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error) {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}

	err := p.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTeamQuery, team.ID, team.Name, team.Description, team.CreatedBy); err != nil {
			if code, _ := pgError(err); code == codeForeignKeyViolation {
				return entities.ErrUserNotFound
			}
			return fmt.Errorf("insert team: %w", err)
		}
		if _, err := tx.Exec(ctx, insertMemberQuery, team.ID, team.CreatedBy); err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		p.log.Errorw("failed to create team", "error", err, "name", team.Name)
		return nil, err
	}

	p.log.Infow("team created", "team_id", team.ID, "created_by", team.CreatedBy)
	return p.GetTeam(ctx, team.ID)
}

// GetTeam fetches a team with its creator's name.
func (p *Postgres) GetTeam(ctx context.Context, teamID string) (*entities.Team, error) {
	if !validID(teamID) {
		return nil, entities.ErrTeamNotFound
	}
	t, err := scanTeam(p.db.QueryRow(ctx, selectTeamQuery, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// ListTeams returns a page of all teams, newest first.
func (p *Postgres) ListTeams(ctx context.Context, page entities.Page) (entities.TeamList, error) {
	res := entities.TeamList{Teams: make([]entities.Team, 0)}
	if err := p.db.QueryRow(ctx, countTeamsQuery).Scan(&res.Total); err != nil {
		return res, fmt.Errorf("count teams: %w", err)
	}

	teams, err := p.queryTeams(ctx, listTeamsQuery, page.Limit, page.Offset)
	if err != nil {
		return res, err
	}
	res.Teams = teams
	return res, nil
}

// ListUserTeams returns the teams the user belongs to.
func (p *Postgres) ListUserTeams(ctx context.Context, userID string) ([]entities.Team, error) {
	if !validID(userID) {
		return make([]entities.Team, 0), nil
	}
	return p.queryTeams(ctx, userTeamsQuery, userID)
}

func (p *Postgres) queryTeams(ctx context.Context, query string, args ...any) ([]entities.Team, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}

// UpdateTeam applies the present fields of patch. An empty description clears it.
func (p *Postgres) UpdateTeam(ctx context.Context, teamID string, patch entities.TeamPatch) (*entities.Team, error) {
	if !validID(teamID) {
		return nil, entities.ErrTeamNotFound
	}

	var description *string
	if patch.Description != nil && *patch.Description != "" {
		description = patch.Description
	}

	tag, err := p.db.Exec(ctx, updateTeamQuery, teamID, patch.Name, patch.Description != nil, description)
	if err != nil {
		p.log.Errorw("failed to update team", "error", err, "team_id", teamID)
		return nil, fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, entities.ErrTeamNotFound
	}

	p.log.Infow("team updated", "team_id", teamID)
	return p.GetTeam(ctx, teamID)
}

// DeleteTeam removes a team with its memberships and tasks. Callers check
// for unfinished tasks first.
func (p *Postgres) DeleteTeam(ctx context.Context, teamID string) error {
	if !validID(teamID) {
		return entities.ErrTeamNotFound
	}

	tag, err := p.db.Exec(ctx, deleteTeamQuery, teamID)
	if err != nil {
		p.log.Errorw("failed to delete team", "error", err, "team_id", teamID)
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTeamNotFound
	}

	p.log.Infow("team deleted", "team_id", teamID)
	return nil
}

// CountActiveTasks counts the team's tasks that are not Completed, optionally
// only those assigned to assignee.
func (p *Postgres) CountActiveTasks(ctx context.Context, teamID string, assignee *string) (int, error) {
	if !validID(teamID) || (assignee != nil && !validID(*assignee)) {
		return 0, nil
	}

	var n int
	if err := p.db.QueryRow(ctx, activeTasksQuery, teamID, assignee).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active tasks: %w", err)
	}
	return n, nil
}

// TeamMembers lists members in join order.
func (p *Postgres) TeamMembers(ctx context.Context, teamID string) ([]entities.TeamMember, error) {
	members := make([]entities.TeamMember, 0)
	if !validID(teamID) {
		return members, nil
	}

	rows, err := p.db.Query(ctx, teamMembersQuery, teamID)
	if err != nil {
		return nil, fmt.Errorf("team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entities.TeamMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the team.
func (p *Postgres) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	if !validID(teamID, userID) {
		return false, nil
	}
	var ok bool
	if err := p.db.QueryRow(ctx, isMemberQuery, teamID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// AddMember enrolls a user. A second enrollment of the same pair is a conflict.
func (p *Postgres) AddMember(ctx context.Context, teamID, userID string) error {
	if !validID(teamID) {
		return entities.ErrTeamNotFound
	}
	if !validID(userID) {
		return entities.ErrUserNotFound
	}

	if _, err := p.db.Exec(ctx, insertMemberQuery, teamID, userID); err != nil {
		code, constraint := pgError(err)
		switch {
		case code == codeUniqueViolation:
			return entities.ErrAlreadyMember
		case code == codeForeignKeyViolation && constraint == "team_members_team_id_fkey":
			return entities.ErrTeamNotFound
		case code == codeForeignKeyViolation:
			return entities.ErrUserNotFound
		}
		p.log.Errorw("failed to add member", "error", err, "team_id", teamID, "user_id", userID)
		return fmt.Errorf("add member: %w", err)
	}

	p.log.Infow("member added", "team_id", teamID, "user_id", userID)
	return nil
}

// RemoveMember deletes the membership row. Callers enforce the active task
// precondition.
func (p *Postgres) RemoveMember(ctx context.Context, teamID, userID string) error {
	if !validID(teamID, userID) {
		return entities.ErrNotMember
	}

	tag, err := p.db.Exec(ctx, deleteMemberQuery, teamID, userID)
	if err != nil {
		p.log.Errorw("failed to remove member", "error", err, "team_id", teamID, "user_id", userID)
		return fmt.Errorf("remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotMember
	}

	p.log.Infow("member removed", "team_id", teamID, "user_id", userID)
	return nil
}

// TeamStats counts the team's tasks per status, distinct assignees and members.
func (p *Postgres) TeamStats(ctx context.Context, teamID string) (entities.TeamStats, error) {
	var s entities.TeamStats
	if !validID(teamID) {
		return s, entities.ErrTeamNotFound
	}

	if err := p.db.QueryRow(ctx, teamTaskStatsQuery, teamID).
		Scan(&s.TotalTasks, &s.PendingTasks, &s.InProgressTasks, &s.CompletedTasks, &s.ActiveMembers); err != nil {
		return s, fmt.Errorf("team task stats: %w", err)
	}
	if err := p.db.QueryRow(ctx, teamMemberCountQuery, teamID).Scan(&s.TotalMembers); err != nil {
		return s, fmt.Errorf("team member count: %w", err)
	}
	return s, nil
}
