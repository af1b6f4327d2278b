// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"task-manager/internal/entities"
	api "task-manager/internal/transport/http/api"
)

// ToAPIUser maps entities.User to transport model without the password hash.
func ToAPIUser(u entities.User) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToAPIUserList maps a page of users.
func ToAPIUserList(list entities.UserList, page entities.Page) api.UserList {
	users := make([]api.User, 0, len(list.Users))
	for _, u := range list.Users {
		users = append(users, ToAPIUser(u))
	}
	return api.UserList{Users: users, Total: list.Total, Page: pageNumber(page), Limit: page.Limit}
}

// ToAPIUserDetails maps a user with teams and recent tasks.
func ToAPIUserDetails(src entities.UserDetails) api.UserDetails {
	return api.UserDetails{
		User:        ToAPIUser(src.User),
		Teams:       ToAPITeams(src.Teams),
		TasksCount:  src.TasksCount,
		RecentTasks: ToAPITasks(src.RecentTasks),
	}
}

// ToAPISession maps an issued token.
func ToAPISession(s entities.Session) api.AuthResponse {
	return api.AuthResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: ToAPIUser(s.User)}
}

// FromRegister builds registration input.
func FromRegister(src api.RegisterRequest) entities.NewUser {
	return entities.NewUser{
		Name:     src.Name,
		Email:    src.Email,
		Password: src.Password,
		Role:     entities.Role(src.Role),
	}
}

// FromUserUpdate builds a partial account update.
func FromUserUpdate(src api.UpdateUserRequest) entities.UserPatch {
	patch := entities.UserPatch{Name: src.Name, Email: src.Email, Password: src.Password}
	if src.Role != nil {
		role := entities.Role(*src.Role)
		patch.Role = &role
	}
	return patch
}

// ToAPITeam maps entities.Team to transport model.
func ToAPITeam(t entities.Team) api.Team {
	return api.Team{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		CreatedBy:     t.CreatedBy,
		CreatedByName: t.CreatedByName,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToAPITeams maps a slice of teams.
func ToAPITeams(list []entities.Team) []api.Team {
	res := make([]api.Team, 0, len(list))
	for _, t := range list {
		res = append(res, ToAPITeam(t))
	}
	return res
}

// ToAPIMembers maps team members.
func ToAPIMembers(list []entities.TeamMember) []api.TeamMember {
	res := make([]api.TeamMember, 0, len(list))
	for _, m := range list {
		res = append(res, api.TeamMember{
			UserID:   m.UserID,
			Name:     m.Name,
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return res
}

// ToAPIStats maps team counters.
func ToAPIStats(s entities.TeamStats) api.TeamStats {
	return api.TeamStats(s)
}

// ToAPITeamDetails maps a team with members, tasks and stats.
func ToAPITeamDetails(src entities.TeamDetails) api.TeamDetails {
	return api.TeamDetails{
		Team:        ToAPITeam(src.Team),
		Members:     ToAPIMembers(src.Members),
		TasksCount:  src.TasksCount,
		RecentTasks: ToAPITasks(src.RecentTasks),
		Stats:       ToAPIStats(src.Stats),
	}
}

// FromTeamRequest builds team creation input.
func FromTeamRequest(src api.TeamRequest) entities.Team {
	team := entities.Team{Description: src.Description}
	if src.Name != nil {
		team.Name = *src.Name
	}
	return team
}

// FromTeamUpdate builds a partial team update.
func FromTeamUpdate(src api.TeamRequest) entities.TeamPatch {
	return entities.TeamPatch{Name: src.Name, Description: src.Description}
}

// ToAPITask maps entities.Task to transport model.
func ToAPITask(t entities.Task) api.Task {
	return api.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AssignedTo:     t.AssignedTo,
		AssignedToName: t.AssignedToName,
		TeamID:         t.TeamID,
		TeamName:       t.TeamName,
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.CreatedByName,
		DueDate:        t.DueDate,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToAPITasks maps a slice of tasks.
func ToAPITasks(list []entities.Task) []api.Task {
	res := make([]api.Task, 0, len(list))
	for _, t := range list {
		res = append(res, ToAPITask(t))
	}
	return res
}

// ToAPITaskList maps a page of tasks.
func ToAPITaskList(list entities.TaskList, page entities.Page) api.TaskList {
	return api.TaskList{Tasks: ToAPITasks(list.Tasks), Total: list.Total, Page: pageNumber(page), Limit: page.Limit}
}

// ToAPITaskDetails maps a task with history and flags.
func ToAPITaskDetails(src entities.TaskDetails) api.TaskDetails {
	return api.TaskDetails{
		Task:          ToAPITask(src.Task),
		History:       ToAPIHistory(src.History),
		CanEdit:       src.CanEdit,
		IsOverdue:     src.IsOverdue,
		DaysRemaining: src.DaysRemaining,
	}
}

// FromTaskCreate builds task creation input. Status and priority defaults
// are applied later.
func FromTaskCreate(src api.TaskRequest) (entities.NewTask, error) {
	task := entities.NewTask{
		Description: src.Description,
		AssignedTo:  src.AssignedTo,
	}
	if src.Title != nil {
		task.Title = *src.Title
	}
	if src.TeamID != nil {
		task.TeamID = *src.TeamID
	}
	if src.Status != nil {
		task.Status = entities.TaskStatus(*src.Status)
	}
	if src.Priority != nil {
		task.Priority = entities.TaskPriority(*src.Priority)
	}
	if src.DueDate != nil && *src.DueDate != "" {
		due, err := entities.ParseDueDate(*src.DueDate)
		if err != nil {
			return entities.NewTask{}, err
		}
		task.DueDate = &due
	}
	return task, nil
}

// FromTaskUpdate builds a partial task update. An empty due date clears it.
func FromTaskUpdate(src api.TaskRequest) (entities.TaskPatch, error) {
	patch := entities.TaskPatch{
		Title:       src.Title,
		Description: src.Description,
		AssignedTo:  src.AssignedTo,
	}
	if src.Status != nil {
		status := entities.TaskStatus(*src.Status)
		patch.Status = &status
	}
	if src.Priority != nil {
		priority := entities.TaskPriority(*src.Priority)
		patch.Priority = &priority
	}
	if src.DueDate != nil {
		if *src.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			due, err := entities.ParseDueDate(*src.DueDate)
			if err != nil {
				return entities.TaskPatch{}, err
			}
			patch.DueDate = &due
		}
	}
	return patch, nil
}

// ToAPIHistory maps ledger entries.
func ToAPIHistory(list []entities.HistoryEntry) []api.HistoryEntry {
	res := make([]api.HistoryEntry, 0, len(list))
	for _, h := range list {
		res = append(res, api.HistoryEntry{
			ID:              h.ID,
			TaskID:          h.TaskID,
			ChangedBy:       h.ChangedBy,
			ChangedByName:   h.ChangedByName,
			FieldChanged:    h.Field,
			OldValue:        h.OldValue,
			NewValue:        h.NewValue,
			Reason:          h.Reason,
			ChangedAt:       h.ChangedAt,
			TaskTitle:       h.TaskTitle,
			TeamName:        h.TeamName,
			FormattedChange: h.FormattedChange(),
		})
	}
	return res
}

func pageNumber(p entities.Page) int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}
