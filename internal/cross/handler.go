package cross

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes cross HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a cross HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type openRequest struct {
	Pair          string `json:"pair"`
	LongClientID  string `json:"long_client_id"`
	ShortClientID string `json:"short_client_id"`
	LongBroker    string `json:"long_broker"`
	ShortBroker   string `json:"short_broker"`
	Amount        string `json:"amount"`
	Note          string `json:"note"`
}

type crossResponse struct {
	ID            string `json:"id"`
	Pair          string `json:"pair"`
	LongClientID  string `json:"long_client_id"`
	ShortClientID string `json:"short_client_id"`
	LongBroker    string `json:"long_broker,omitempty"`
	ShortBroker   string `json:"short_broker,omitempty"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	Result        string `json:"result"`
	Note          string `json:"note,omitempty"`
	OpenedAt      string `json:"opened_at"`
	ClosedAt      string `json:"closed_at,omitempty"`
}

func toResponse(c Cross) crossResponse {
	resp := crossResponse{
		ID:            c.ID,
		Pair:          c.Pair,
		LongClientID:  c.LongClientID,
		ShortClientID: c.ShortClientID,
		LongBroker:    c.LongBroker,
		ShortBroker:   c.ShortBroker,
		Amount:        c.Amount.String(),
		Status:        string(c.Status),
		Result:        c.Result.String(),
		Note:          c.Note,
		OpenedAt:      c.OpenedAt.Format(time.RFC3339Nano),
	}
	if !c.ClosedAt.IsZero() {
		resp.ClosedAt = c.ClosedAt.Format(time.RFC3339Nano)
	}
	return resp
}

// Open records a new cross.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount is not a valid number")
	}
	opened, err := h.service.Open(c.UserContext(), OpenInput{
		Pair:          req.Pair,
		LongClientID:  req.LongClientID,
		ShortClientID: req.ShortClientID,
		LongBroker:    req.LongBroker,
		ShortBroker:   req.ShortBroker,
		Amount:        amount,
		Note:          req.Note,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(opened))
}

// List returns crosses, optionally by status.
func (h *Handler) List(c *fiber.Ctx) error {
	crosses, err := h.service.List(c.UserContext(), Status(c.Query("status")))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]crossResponse, 0, len(crosses))
	for _, cr := range crosses {
		out = append(out, toResponse(cr))
	}
	return c.JSON(out)
}

// Get returns a single cross.
func (h *Handler) Get(c *fiber.Ctx) error {
	cr, err := h.service.Get(c.UserContext(), c.Params("crossId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.JSON(toResponse(cr))
}

// Close settles an open cross.
func (h *Handler) Close(c *fiber.Ctx) error {
	var req struct {
		Result string `json:"result"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	result, err := decimal.NewFromString(req.Result)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "result is not a valid number")
	}
	cr, err := h.service.Close(c.UserContext(), c.Params("crossId"), result)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyClosed):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(toResponse(cr))
}
