package handlers_fiber

import (
	"fmt"
	"net/http"
	"strconv"

	"task-manager/internal/entities"
	"task-manager/internal/mapper"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
)

// ListHistory queries the whole ledger by task, author, team or field.
func (h *Handler) ListHistory(c *fiber.Ctx) error {
	filter := entities.HistoryFilter{
		TaskID:    optionalQuery(c, "task_id"),
		ChangedBy: optionalQuery(c, "changed_by"),
		TeamID:    optionalQuery(c, "team_id"),
		Field:     optionalQuery(c, "field"),
		Page:      pageQuery(c, entities.DefaultHistoryLimit),
	}

	entries, err := h.uc.ListHistory(c.UserContext(), actor(c), filter)
	if err != nil {
		return h.fail(c, "failed to list history", err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToAPIHistory(entries))
}

// PurgeHistory deletes entries older than ?days=, or the configured retention.
func (h *Handler) PurgeHistory(c *fiber.Ctx) error {
	days := 0
	if raw := optionalQuery(c, "days"); raw != nil {
		n, err := strconv.Atoi(*raw)
		if err != nil {
			return writeError(c, fmt.Errorf("%w: days must be an integer", entities.ErrInvalidArgument))
		}
		days = n
	}

	deleted, err := h.uc.PurgeHistory(c.UserContext(), actor(c), days)
	if err != nil {
		return h.fail(c, "failed to purge history", err)
	}
	return c.Status(http.StatusOK).JSON(api.PurgeResponse{Deleted: deleted})
}
