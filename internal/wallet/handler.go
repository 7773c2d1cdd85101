package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
	Owner    string `json:"owner"`
}

type walletResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Currency  string `json:"currency"`
	Owner     string `json:"owner,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Kind:      string(w.Kind),
		Currency:  w.Currency,
		Owner:     w.Owner,
		Active:    w.Active,
		CreatedAt: w.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Create registers a wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Create(c.UserContext(), CreateInput{
		Name:     req.Name,
		Kind:     Kind(req.Kind),
		Currency: req.Currency,
		Owner:    req.Owner,
	})
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w))
}

// List returns wallets, optionally restricted by kind or to team wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	var (
		wallets []Wallet
		err     error
	)
	if c.QueryBool("team") {
		wallets, err = h.service.ListTeam(c.UserContext())
	} else {
		wallets, err = h.service.List(c.UserContext(), Filter{
			Kind:       Kind(c.Query("kind")),
			ActiveOnly: c.QueryBool("active"),
		})
	}
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toResponse(w))
	}
	return c.JSON(out)
}

// Get returns a wallet by display name.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.service.GetByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.JSON(toResponse(w))
}

// Rename changes the display name without touching ledger history.
func (h *Handler) Rename(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Rename(c.UserContext(), c.Params("walletId"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNameTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(toResponse(w))
}

// Deactivate retires a wallet.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	if err := h.service.Deactivate(c.UserContext(), c.Params("walletId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// Activate restores a retired wallet.
func (h *Handler) Activate(c *fiber.Ctx) error {
	if err := h.service.Activate(c.UserContext(), c.Params("walletId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
