package handlers_fiber

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task-manager/internal/entities"
	api "task-manager/internal/transport/http/api"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := api.INTERNAL
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = api.INVALIDARGUMENT
		msg = err.Error()
	case errors.Is(err, entities.ErrUnauthorized):
		status = http.StatusUnauthorized
		code = api.UNAUTHORIZED
		msg = err.Error()
	case errors.Is(err, entities.ErrForbidden):
		status = http.StatusForbidden
		code = api.FORBIDDEN
		msg = err.Error()
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
		code = api.NOTFOUND
		msg = err.Error()
	case errors.Is(err, entities.ErrConflict):
		status = http.StatusConflict
		code = api.CONFLICT
		msg = err.Error()
	}

	return c.Status(status).JSON(errorResponse(code, msg))
}

func errorResponse(code api.ErrorCode, msg string) api.ErrorResponse {
	return api.ErrorResponse{Error: api.ErrorBody{Code: code, Message: msg}}
}

// fail logs err at a level matching its kind and writes the error response.
func (h *Handler) fail(c *fiber.Ctx, action string, err error) error {
	if isClientError(err) {
		h.log.Infow(action, "error", err.Error(), "path", c.Path())
	} else {
		h.log.Errorw(action, "error", err, "path", c.Path())
	}
	return writeError(c, err)
}

func isClientError(err error) bool {
	for _, kind := range []error{
		entities.ErrInvalidArgument,
		entities.ErrUnauthorized,
		entities.ErrForbidden,
		entities.ErrNotFound,
		entities.ErrConflict,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(errorResponse(api.INVALIDARGUMENT, "invalid body"))
}

// pageQuery reads 1-based ?page= and ?limit= parameters.
func pageQuery(c *fiber.Ctx, defaultLimit int) entities.Page {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, entities.MaxPageLimit)
	return entities.PageFromNumber(c.QueryInt("page", 1), limit).WithDefault(defaultLimit)
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

// timeQuery parses an RFC 3339 timestamp or a YYYY-MM-DD date.
func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := optionalQuery(c, key)
	if v == nil {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, *v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or YYYY-MM-DD date", entities.ErrInvalidArgument, key)
}

func activityQuery(c *fiber.Ctx) (entities.ActivityFilter, error) {
	from, err := timeQuery(c, "from")
	if err != nil {
		return entities.ActivityFilter{}, err
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		return entities.ActivityFilter{}, err
	}
	return entities.ActivityFilter{From: from, To: to}, nil
}

// taskFilterQuery reads the task listing filters shared by task endpoints.
func taskFilterQuery(c *fiber.Ctx) entities.TaskFilter {
	filter := entities.TaskFilter{
		AssignedTo: optionalQuery(c, "assigned_to"),
		TeamID:     optionalQuery(c, "team_id"),
		CreatedBy:  optionalQuery(c, "created_by"),
		Page:       pageQuery(c, entities.DefaultPageLimit),
	}
	if s := optionalQuery(c, "status"); s != nil {
		status := entities.TaskStatus(*s)
		filter.Status = &status
	}
	if p := optionalQuery(c, "priority"); p != nil {
		priority := entities.TaskPriority(*p)
		filter.Priority = &priority
	}
	return filter
}

func message(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusOK).JSON(api.MessageResponse{Message: msg})
}
