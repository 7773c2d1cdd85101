package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cpadesk/cpadesk/internal/ledger"
)

// RegisterLedgerRoutes wires transaction-log endpoints.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/transactions", h.Add)
	r.Get("/transactions", h.List)
	r.Get("/transactions/stats", h.Stats)
	r.Get("/transactions/:txId", h.Get)
	r.Patch("/transactions/:txId/status", h.SetStatus)
	r.Delete("/transactions/:txId", h.Remove)
	r.Post("/deposits", h.Deposit)
	r.Post("/withdrawals", h.Withdraw)
}
