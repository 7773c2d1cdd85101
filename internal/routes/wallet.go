package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cpadesk/cpadesk/internal/ledger"
	"github.com/cpadesk/cpadesk/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints. The balance endpoint
// belongs to the ledger handler because balances are derived from the
// transaction log, not stored on the wallet.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, lh *ledger.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets", h.List)
	r.Get("/wallets/:name", h.Get)
	r.Get("/wallets/:name/balance", lh.Balance)
	r.Patch("/wallets/:walletId/name", h.Rename)
	r.Post("/wallets/:walletId/deactivate", h.Deactivate)
	r.Post("/wallets/:walletId/activate", h.Activate)
}
