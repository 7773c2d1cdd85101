package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cpadesk/cpadesk/internal/client"
)

// RegisterClientRoutes wires client roster endpoints.
func RegisterClientRoutes(r fiber.Router, h *client.Handler) {
	r.Post("/clients", h.Create)
	r.Get("/clients", h.List)
	r.Get("/clients/:clientId", h.Get)
	r.Patch("/clients/:clientId", h.Update)
	r.Post("/clients/:clientId/deactivate", h.Deactivate)
}
