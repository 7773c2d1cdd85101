package client

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes client HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a client HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name"`
	Broker        string `json:"broker"`
	Platform      string `json:"platform"`
	AccountNumber string `json:"account_number"`
	WalletAddress string `json:"wallet_address"`
	CPAFee        string `json:"cpa_fee"`
}

type updateRequest struct {
	Name          *string `json:"name"`
	Broker        *string `json:"broker"`
	Platform      *string `json:"platform"`
	AccountNumber *string `json:"account_number"`
	WalletAddress *string `json:"wallet_address"`
	CPAFee        *string `json:"cpa_fee"`
}

type clientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Broker        string `json:"broker,omitempty"`
	Platform      string `json:"platform,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	CPAFee        string `json:"cpa_fee"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toResponse(c Client) clientResponse {
	return clientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Broker:        c.Broker,
		Platform:      c.Platform,
		AccountNumber: c.AccountNumber,
		WalletAddress: c.WalletAddress,
		CPAFee:        c.CPAFee.String(),
		Active:        c.Active,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     c.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Create registers a client.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	fee := decimal.Zero
	if req.CPAFee != "" {
		parsed, err := decimal.NewFromString(req.CPAFee)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "cpa_fee is not a valid number")
		}
		fee = parsed
	}
	created, err := h.service.Create(c.UserContext(), CreateInput{
		Name:          req.Name,
		Broker:        req.Broker,
		Platform:      req.Platform,
		AccountNumber: req.AccountNumber,
		WalletAddress: req.WalletAddress,
		CPAFee:        fee,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(created))
}

// List returns the client roster.
func (h *Handler) List(c *fiber.Ctx) error {
	clients, err := h.service.List(c.UserContext(), c.QueryBool("active"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]clientResponse, 0, len(clients))
	for _, cl := range clients {
		out = append(out, toResponse(cl))
	}
	return c.JSON(out)
}

// Get returns a single client.
func (h *Handler) Get(c *fiber.Ctx) error {
	cl, err := h.service.Get(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.JSON(toResponse(cl))
}

// Update edits a client record.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	input := UpdateInput{
		Name:          req.Name,
		Broker:        req.Broker,
		Platform:      req.Platform,
		AccountNumber: req.AccountNumber,
		WalletAddress: req.WalletAddress,
	}
	if req.CPAFee != nil {
		fee, err := decimal.NewFromString(*req.CPAFee)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "cpa_fee is not a valid number")
		}
		input.CPAFee = &fee
	}
	cl, err := h.service.Update(c.UserContext(), c.Params("clientId"), input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(toResponse(cl))
}

// Deactivate retires a client.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	if err := h.service.Deactivate(c.UserContext(), c.Params("clientId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
