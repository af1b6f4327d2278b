package handlers_fiber

import (
	"net/http"

	"task-manager/internal/entities"
	"task-manager/internal/mapper"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
)

// ListTasks returns tasks visible to the caller.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	filter := taskFilterQuery(c)
	list, err := h.uc.ListTasks(c.UserContext(), actor(c), filter)
	if err != nil {
		return h.fail(c, "failed to list tasks", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITaskList(list, filter.Page))
}

// RecentActivity returns the latest changes the caller can see.
func (h *Handler) RecentActivity(c *fiber.Ctx) error {
	entries, err := h.uc.RecentActivity(c.UserContext(), actor(c), pageQuery(c, entities.DefaultActivityLimit))
	if err != nil {
		return h.fail(c, "failed to load recent activity", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIHistory(entries))
}

// GetTask returns a task with history and caller-relative flags.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	details, err := h.uc.TaskDetails(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "failed to get task", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITaskDetails(*details))
}

// CreateTask creates a task.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var body api.TaskRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	input, err := mapper.FromTaskCreate(body)
	if err != nil {
		return writeError(c, err)
	}

	task, err := h.uc.CreateTask(c.UserContext(), actor(c), input)
	if err != nil {
		return h.fail(c, "failed to create task", err)
	}
	return c.Status(http.StatusCreated).JSON(mapper.ToAPITask(*task))
}

// UpdateTask applies a partial update.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	var body api.TaskRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	patch, err := mapper.FromTaskUpdate(body)
	if err != nil {
		return writeError(c, err)
	}

	task, err := h.uc.UpdateTask(c.UserContext(), actor(c), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, "failed to update task", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITask(*task))
}

// DeleteTask removes a task and keeps its history.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	if err := h.uc.DeleteTask(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return h.fail(c, "failed to delete task", err)
	}
	return message(c, "task deleted")
}

// AssignTask sets or clears the assignee.
func (h *Handler) AssignTask(c *fiber.Ctx) error {
	var body api.AssignRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	userID := ""
	if body.UserID != nil {
		userID = *body.UserID
	}

	task, err := h.uc.AssignTask(c.UserContext(), actor(c), c.Params("id"), userID)
	if err != nil {
		return h.fail(c, "failed to assign task", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITask(*task))
}

// ChangeTaskStatus moves a task to another status.
func (h *Handler) ChangeTaskStatus(c *fiber.Ctx) error {
	var body api.StatusRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	task, err := h.uc.ChangeTaskStatus(c.UserContext(), actor(c), c.Params("id"), entities.TaskStatus(body.Status), body.Reason)
	if err != nil {
		return h.fail(c, "failed to change task status", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPITask(*task))
}

// TaskHistory returns a task with a page of its history.
func (h *Handler) TaskHistory(c *fiber.Ctx) error {
	task, entries, err := h.uc.TaskHistory(c.UserContext(), actor(c), c.Params("id"), pageQuery(c, entities.DefaultHistoryLimit))
	if err != nil {
		return h.fail(c, "failed to get task history", err)
	}
	return c.Status(http.StatusOK).JSON(api.TaskHistory{Task: mapper.ToAPITask(*task), History: mapper.ToAPIHistory(entries)})
}
