// Package handlers_fiber wires HTTP delivery components.
package handlers_fiber

import (
	"task-manager/internal/entities"
	"task-manager/internal/transport/http/middleware"
	"task-manager/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the JSON API on top of the usecase layer.
type Handler struct {
	log *zap.SugaredLogger
	uc  usecase.InterfaceUsecase
}

// NewHandler constructs an HTTP server with service dependencies.
func NewHandler(log *zap.SugaredLogger, usecase usecase.InterfaceUsecase) *Handler {
	return &Handler{
		log: log.Named("http"),
		uc:  usecase,
	}
}

// RegisterHandlers mounts every route of h under router.
func RegisterHandlers(router fiber.Router, h *Handler) {
	requireAuth := middleware.RequireAuth(h.uc, h.log)

	auth := router.Group("/auth")
	auth.Post("/register", middleware.OptionalAuth(h.uc, h.log), h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/profile", requireAuth, h.Profile)
	auth.Put("/profile", requireAuth, h.UpdateProfile)
	auth.Get("/verify", requireAuth, h.Verify)
	auth.Post("/logout", requireAuth, h.Logout)

	users := router.Group("/users", requireAuth)
	users.Get("/", h.ListUsers)
	users.Post("/", h.CreateUser)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
	users.Get("/:id/tasks", h.UserTasks)
	users.Get("/:id/teams", h.UserTeams)
	users.Get("/:id/history", h.UserHistory)
	users.Get("/:id/activity", h.UserActivity)

	teams := router.Group("/teams", requireAuth)
	teams.Get("/", h.ListTeams)
	teams.Post("/", h.CreateTeam)
	teams.Get("/:id", h.GetTeam)
	teams.Put("/:id", h.UpdateTeam)
	teams.Delete("/:id", h.DeleteTeam)
	teams.Get("/:id/members", h.TeamMembers)
	teams.Post("/:id/members", h.AddMember)
	teams.Delete("/:id/members/:userId", h.RemoveMember)
	teams.Get("/:id/tasks", h.TeamTasks)
	teams.Get("/:id/stats", h.TeamStats)
	teams.Get("/:id/history", h.TeamHistory)
	teams.Get("/:id/activity", h.TeamActivity)

	tasks := router.Group("/tasks", requireAuth)
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/recent-activity", h.RecentActivity)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Put("/:id/assign", h.AssignTask)
	tasks.Post("/:id/assign", h.AssignTask)
	tasks.Put("/:id/status", h.ChangeTaskStatus)
	tasks.Post("/:id/status", h.ChangeTaskStatus)
	tasks.Get("/:id/history", h.TaskHistory)

	history := router.Group("/history", requireAuth)
	history.Get("/", h.ListHistory)
	history.Delete("/", h.PurgeHistory)
}

// actor returns the caller set by the auth middleware.
func actor(c *fiber.Ctx) entities.Actor {
	a, _ := middleware.Actor(c)
	return a
}
