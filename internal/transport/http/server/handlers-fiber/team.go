package handlers_fiber

import (
	"net/http"

	"task-manager/internal/entities"
	"task-manager/internal/mapper"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
)

// ListTeams returns all teams to admins and the caller's teams otherwise.
func (h *Handler) ListTeams(c *fiber.Ctx) error {
	list, err := h.uc.ListTeams(c.UserContext(), actor(c), pageQuery(c, entities.DefaultPageLimit))
	if err != nil {
		return h.fail(c, "failed to list teams", err)
	}
	return c.Status(http.StatusOK).JSON(api.TeamList{Teams: mapper.ToAPITeams(list.Teams), Total: list.Total})
}

// GetTeam returns a team with members, recent tasks and stats.
func (h *Handler) GetTeam(c *fiber.Ctx) error {
	details, err := h.uc.TeamDetails(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to get team", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITeamDetails(*details))
}

// CreateTeam creates a team with the caller as first member.
func (h *Handler) CreateTeam(c *fiber.Ctx) error {
	var body api.TeamRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	team, err := h.uc.CreateTeam(c.UserContext(), actor(c), mapper.FromTeamRequest(body))
	if err != nil {
		return h.fail(c, "failed to create team", err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPITeam(*team))
}

// UpdateTeam edits the name or description of a team.
func (h *Handler) UpdateTeam(c *fiber.Ctx) error {
	var body api.TeamRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	team, err := h.uc.UpdateTeam(c.UserContext(), actor(c), c.Params("id"), mapper.FromTeamUpdate(body))
	if err != nil {
		return h.fail(c, "failed to update team", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITeam(*team))
}

// DeleteTeam removes a team without active tasks.
func (h *Handler) DeleteTeam(c *fiber.Ctx) error {
	if err := h.uc.DeleteTeam(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return h.fail(c, "failed to delete team", err)
	}
	return message(c, "team deleted")
}

// TeamMembers lists the members of a team.
func (h *Handler) TeamMembers(c *fiber.Ctx) error {
	members, err := h.uc.TeamMembers(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to list team members", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIMembers(members))
}

// AddMember enrolls a user in a team.
func (h *Handler) AddMember(c *fiber.Ctx) error {
	var body api.AddMemberRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	members, err := h.uc.AddMember(c.UserContext(), actor(c), c.Params("id"), body.UserID)
	if err != nil {
		return h.fail(c, "failed to add team member", err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPIMembers(members))
}

// RemoveMember drops a membership.
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	if err := h.uc.RemoveMember(c.UserContext(), actor(c), c.Params("id"), c.Params("userId")); err != nil {
		return h.fail(c, "failed to remove team member", err)
	}
	return message(c, "member removed")
}

// TeamTasks lists the tasks of a team.
func (h *Handler) TeamTasks(c *fiber.Ctx) error {
	filter := taskFilterQuery(c)
	list, err := h.uc.TeamTasks(c.UserContext(), actor(c), c.Params("id"), filter)
	if err != nil {
		return h.fail(c, "failed to list team tasks", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITaskList(list, filter.Page))
}

// TeamStats returns task counters of a team.
func (h *Handler) TeamStats(c *fiber.Ctx) error {
	stats, err := h.uc.TeamStats(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to get team stats", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIStats(stats))
}

// TeamHistory lists changes on the team's tasks.
func (h *Handler) TeamHistory(c *fiber.Ctx) error {
	entries, err := h.uc.TeamHistory(c.UserContext(), actor(c), c.Params("id"), pageQuery(c, entities.DefaultHistoryLimit))
	if err != nil {
		return h.fail(c, "failed to list team history", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIHistory(entries))
}

// TeamActivity aggregates changes on the team's tasks.
func (h *Handler) TeamActivity(c *fiber.Ctx) error {
	filter, err := activityQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	stats, err := h.uc.TeamActivity(c.UserContext(), actor(c), c.Params("id"), filter)
	if err != nil {
		return h.fail(c, "failed to aggregate team activity", err)
	}
	return c.Status(http.StatusOK).JSON(activityResponse(stats))
}
