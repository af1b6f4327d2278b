package handlers_fiber

import (
	"net/http"

	"task-manager/internal/entities"
	"task-manager/internal/mapper"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
)

// ListUsers returns a page of accounts, optionally filtered by ?role=.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	filter := entities.UserFilter{Page: pageQuery(c, entities.DefaultPageLimit)}
	if r := optionalQuery(c, "role"); r != nil {
		role := entities.Role(*r)
		filter.Role = &role
	}

	list, err := h.uc.ListUsers(c.UserContext(), actor(c), filter)
	if err != nil {
		return h.fail(c, "failed to list users", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUserList(list, filter.Page))
}

// GetUser returns an account with teams and recent tasks.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	details, err := h.uc.UserDetails(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to get user", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUserDetails(*details))
}

// CreateUser provisions an account of any role.
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var body api.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	user, err := h.uc.CreateUser(c.UserContext(), actor(c), mapper.FromRegister(body))
	if err != nil {
		return h.fail(c, "failed to create user", err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPIUser(*user))
}

// UpdateUser edits an account, role included.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var body api.UpdateUserRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	user, err := h.uc.UpdateUser(c.UserContext(), actor(c), c.Params("id"), mapper.FromUserUpdate(body))
	if err != nil {
		return h.fail(c, "failed to update user", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIUser(*user))
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return h.fail(c, "failed to delete user", err)
	}
	return message(c, "user deleted")
}

// UserTasks lists tasks assigned to a user.
func (h *Handler) UserTasks(c *fiber.Ctx) error {
	filter := taskFilterQuery(c)
	list, err := h.uc.UserTasks(c.UserContext(), actor(c), c.Params("id"), filter)
	if err != nil {
		return h.fail(c, "failed to list user tasks", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITaskList(list, filter.Page))
}

// UserTeams lists the teams of a user.
func (h *Handler) UserTeams(c *fiber.Ctx) error {
	teams, err := h.uc.UserTeams(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to list user teams", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITeams(teams))
}

// UserHistory lists changes made by a user.
func (h *Handler) UserHistory(c *fiber.Ctx) error {
	entries, err := h.uc.UserHistory(c.UserContext(), actor(c), c.Params("id"), pageQuery(c, entities.DefaultHistoryLimit))
	if err != nil {
		return h.fail(c, "failed to list user history", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIHistory(entries))
}

// UserActivity aggregates a user's changes per day and field.
func (h *Handler) UserActivity(c *fiber.Ctx) error {
	filter, err := activityQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	stats, err := h.uc.UserActivity(c.UserContext(), actor(c), c.Params("id"), filter)
	if err != nil {
		return h.fail(c, "failed to aggregate user activity", err)
	}
	return c.Status(http.StatusOK).JSON(activityResponse(stats))
}

func activityResponse(stats []entities.ActivityStat) []entities.ActivityStat {
	if stats == nil {
		return []entities.ActivityStat{}
	}
	return stats
}
