package entities

import (
	"fmt"
	"strings"
	"time"
)

const minTeamNameLen = 2

// Team groups members and owns tasks.
type Team struct {
	ID            string
	Name          string
	Description   *string
	CreatedBy     string
	CreatedByName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TeamMember is a user projected through the membership set.
type TeamMember struct {
	UserID   string
	Name     string
	Email    string
	Role     Role
	JoinedAt time.Time
}

// TeamPatch is a partial team update. An empty Description clears it.
type TeamPatch struct {
	Name        *string
	Description *string
}

// Empty reports whether the patch carries no field.
func (p TeamPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}

// NormalizeTeam trims the name and turns a blank description into nil.
func NormalizeTeam(t *Team) {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = trimOptional(t.Description)
}

// ValidateTeamName enforces the minimum team name length.
func ValidateTeamName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: team name is required", ErrInvalidArgument)
	}
	if len([]rune(name)) < minTeamNameLen {
		return fmt.Errorf("%w: team name must be at least %d characters", ErrInvalidArgument, minTeamNameLen)
	}
	return nil
}

// TeamStats aggregates task counters for a team.
type TeamStats struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	ActiveMembers   int64 `json:"active_members"`
	TotalMembers    int64 `json:"total_members"`
}

// TeamDetails is a team with members, recent tasks and stats.
type TeamDetails struct {
	Team        Team
	Members     []TeamMember
	TasksCount  int
	RecentTasks []Task
	Stats       TeamStats
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// TeamList is a page of teams with the unpaginated total.
type TeamList struct {
	Teams []Team
	Total int
}
