package domain

import (
	"context"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
)

// ListTeams returns every team to admins and the caller's own teams otherwise.
func (u *Usecase) ListTeams(ctx context.Context, actor entities.Actor, page entities.Page) (entities.TeamList, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	page = page.WithDefault(entities.DefaultPageLimit)
	if policy.CanManageTeams(actor) {
		return u.repo.ListTeams(ctx, page)
	}

	teams, err := u.repo.ListUserTeams(ctx, actor.ID)
	if err != nil {
		return entities.TeamList{}, err
	}
	total := len(teams)
	if page.Offset >= total {
		return entities.TeamList{Teams: []entities.Team{}, Total: total}, nil
	}
	end := min(page.Offset+page.Limit, total)
	return entities.TeamList{Teams: teams[page.Offset:end], Total: total}, nil
}

// TeamDetails returns a team with members, recent tasks and stats.
func (u *Usecase) TeamDetails(ctx context.Context, actor entities.Actor, teamID string) (*entities.TeamDetails, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	team, err := u.teamForMember(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}
	members, err := u.repo.TeamMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	tasks, err := u.repo.ListTasks(ctx, entities.TaskFilter{
		TeamID: &teamID,
		Page:   entities.Page{Limit: recentTasksLimit},
	})
	if err != nil {
		return nil, err
	}
	stats, err := u.repo.TeamStats(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return &entities.TeamDetails{
		Team:        *team,
		Members:     members,
		TasksCount:  tasks.Total,
		RecentTasks: tasks.Tasks,
		Stats:       stats,
	}, nil
}

// CreateTeam creates a team and enrolls the creator.
func (u *Usecase) CreateTeam(ctx context.Context, actor entities.Actor, team entities.Team) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageTeams(actor), actor, policy.OpManageTeam, ""); err != nil {
		return nil, err
	}
	entities.NormalizeTeam(&team)
	if err := entities.ValidateTeamName(team.Name); err != nil {
		return nil, err
	}
	team.CreatedBy = actor.ID
	return u.repo.CreateTeam(ctx, team)
}

// UpdateTeam renames a team or edits its description.
func (u *Usecase) UpdateTeam(ctx context.Context, actor entities.Actor, teamID string, patch entities.TeamPatch) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageTeams(actor), actor, policy.OpManageTeam, teamID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errEmptyUpdate
	}
	if patch.Name != nil {
		t := entities.Team{Name: *patch.Name}
		entities.NormalizeTeam(&t)
		if err := entities.ValidateTeamName(t.Name); err != nil {
			return nil, err
		}
		patch.Name = &t.Name
	}
	return u.repo.UpdateTeam(ctx, teamID, patch)
}

// DeleteTeam removes a team with its tasks and memberships. A team with
// unfinished tasks cannot be deleted.
func (u *Usecase) DeleteTeam(ctx context.Context, actor entities.Actor, teamID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageTeams(actor), actor, policy.OpManageTeam, teamID); err != nil {
		return err
	}
	if _, err := u.repo.GetTeam(ctx, teamID); err != nil {
		return err
	}
	active, err := u.repo.CountActiveTasks(ctx, teamID, nil)
	if err != nil {
		return err
	}
	if active > 0 {
		u.log.Infow("team deletion blocked", "team_id", teamID, "active_tasks", active)
		return entities.ErrTeamHasActiveTasks
	}
	if err := u.repo.DeleteTeam(ctx, teamID); err != nil {
		return err
	}

	u.log.Infow("team deleted", "team_id", teamID, "admin_id", actor.ID)
	return nil
}

// TeamMembers lists the members of a team.
func (u *Usecase) TeamMembers(ctx context.Context, actor entities.Actor, teamID string) ([]entities.TeamMember, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.teamForMember(ctx, actor, teamID); err != nil {
		return nil, err
	}
	return u.repo.TeamMembers(ctx, teamID)
}

// AddMember enrolls a user and returns the updated member list.
func (u *Usecase) AddMember(ctx context.Context, actor entities.Actor, teamID, userID string) ([]entities.TeamMember, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageTeams(actor), actor, policy.OpManageTeam, teamID); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, errMissing("user_id")
	}
	if _, err := u.repo.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.repo.AddMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	u.log.Infow("member added", "team_id", teamID, "user_id", userID)
	return u.repo.TeamMembers(ctx, teamID)
}

// RemoveMember drops a membership. A member still assigned unfinished tasks
// of the team cannot be removed.
func (u *Usecase) RemoveMember(ctx context.Context, actor entities.Actor, teamID, userID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageTeams(actor), actor, policy.OpManageTeam, teamID); err != nil {
		return err
	}
	isMember, err := u.repo.IsMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return entities.ErrNotMember
	}
	active, err := u.repo.CountActiveTasks(ctx, teamID, &userID)
	if err != nil {
		return err
	}
	if active > 0 {
		u.log.Infow("member removal blocked", "team_id", teamID, "user_id", userID, "active_tasks", active)
		return entities.ErrMemberHasActiveTasks
	}
	if err := u.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}

	u.log.Infow("member removed", "team_id", teamID, "user_id", userID)
	return nil
}

// TeamTasks lists the tasks of a team.
func (u *Usecase) TeamTasks(ctx context.Context, actor entities.Actor, teamID string, filter entities.TaskFilter) (entities.TaskList, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.teamForMember(ctx, actor, teamID); err != nil {
		return entities.TaskList{}, err
	}
	filter.TeamID = &teamID
	filter.VisibleTo = nil
	filter.Page = filter.Page.WithDefault(entities.DefaultPageLimit)
	return u.repo.ListTasks(ctx, filter)
}

// TeamStats returns task counters for a team.
func (u *Usecase) TeamStats(ctx context.Context, actor entities.Actor, teamID string) (entities.TeamStats, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.teamForMember(ctx, actor, teamID); err != nil {
		return entities.TeamStats{}, err
	}
	return u.repo.TeamStats(ctx, teamID)
}

// TeamHistory lists ledger entries of the team's tasks.
func (u *Usecase) TeamHistory(ctx context.Context, actor entities.Actor, teamID string, page entities.Page) ([]entities.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.teamForMember(ctx, actor, teamID); err != nil {
		return nil, err
	}
	return u.repo.ListHistory(ctx, entities.HistoryFilter{
		TeamID: &teamID,
		Page:   page.WithDefault(entities.DefaultHistoryLimit),
	})
}

// TeamActivity aggregates changes on the team's tasks per day, field and actor.
func (u *Usecase) TeamActivity(ctx context.Context, actor entities.Actor, teamID string, filter entities.ActivityFilter) ([]entities.ActivityStat, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.teamForMember(ctx, actor, teamID); err != nil {
		return nil, err
	}
	if err := validateActivity(filter); err != nil {
		return nil, err
	}
	return u.repo.ActivityStatsByTeam(ctx, teamID, filter)
}

// teamForMember loads a team and checks the actor may read it.
func (u *Usecase) teamForMember(ctx context.Context, actor entities.Actor, teamID string) (*entities.Team, error) {
	team, err := u.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := u.requireMember(ctx, actor, teamID, policy.OpViewTeam); err != nil {
		return nil, err
	}
	return team, nil
}

func (u *Usecase) requireMember(ctx context.Context, actor entities.Actor, teamID string, op policy.Operation) error {
	isMember, err := u.repo.IsMember(ctx, teamID, actor.ID)
	if err != nil {
		return err
	}
	if policy.RequireTeamMembership(actor, isMember) != nil {
		return u.deny(actor, op, teamID)
	}
	return nil
}
