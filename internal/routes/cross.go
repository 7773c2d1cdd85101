package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cpadesk/cpadesk/internal/cross"
)

// RegisterCrossRoutes wires cross (incrocio) bookkeeping endpoints.
func RegisterCrossRoutes(r fiber.Router, h *cross.Handler) {
	r.Post("/crosses", h.Open)
	r.Get("/crosses", h.List)
	r.Get("/crosses/:crossId", h.Get)
	r.Post("/crosses/:crossId/close", h.Close)
}
