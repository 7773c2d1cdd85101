package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cpadesk/cpadesk/internal/task"
)

// RegisterTaskRoutes wires task board endpoints.
func RegisterTaskRoutes(r fiber.Router, h *task.Handler) {
	r.Post("/tasks", h.Create)
	r.Get("/tasks", h.List)
	r.Get("/tasks/:taskId", h.Get)
	r.Patch("/tasks/:taskId/assignee", h.Assign)
	r.Patch("/tasks/:taskId/status", h.SetStatus)
	r.Delete("/tasks/:taskId", h.Remove)
}
