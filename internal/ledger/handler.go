package ledger

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes ledger HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	Sender   string `json:"sender_wallet"`
	Receiver string `json:"receiver_wallet"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Note     string `json:"note"`
	TxHash   string `json:"tx_hash"`
	Fee      string `json:"fee"`
}

type settledRequest struct {
	TeamWallet   string `json:"team_wallet"`
	ClientWallet string `json:"client_wallet"`
	Amount       string `json:"amount"`
	Reason       string `json:"reason"`
	ExternalRef  string `json:"external_ref"`
	Fee          string `json:"fee"`
}

type transactionResponse struct {
	ID           string `json:"id"`
	SenderWallet string `json:"sender_wallet"`
	Receiver     string `json:"receiver_wallet"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	TxHash       string `json:"tx_hash,omitempty"`
	Fee          string `json:"fee"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toResponse(tx Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		SenderWallet: tx.SenderName,
		Receiver:     tx.ReceiverName,
		Amount:       tx.Amount.String(),
		Currency:     tx.Currency,
		Kind:         tx.Kind,
		Status:       string(tx.Status),
		Note:         tx.Note,
		TxHash:       tx.TxHash,
		Fee:          tx.Fee.String(),
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    tx.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// Add records a transaction.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	fee, err := parseOptionalDecimal(req.Fee)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "fee is not a valid number")
	}
	tx, err := h.service.Add(c.UserContext(), AddInput{
		Sender:   req.Sender,
		Receiver: req.Receiver,
		Amount:   req.Amount,
		Currency: req.Currency,
		Kind:     req.Kind,
		Status:   Status(req.Status),
		Note:     req.Note,
		TxHash:   req.TxHash,
		Fee:      fee,
	})
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// List returns transactions, optionally filtered by wallet, status or kind.
func (h *Handler) List(c *fiber.Ctx) error {
	q := Query{
		Wallet: c.Query("wallet"),
		Status: Status(c.Query("status")),
		Kind:   c.Query("kind"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid limit")
		}
		q.Limit = limit
	}
	txs, err := h.service.Transactions(c.UserContext(), q)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}
	return c.JSON(out)
}

// Get returns a single transaction.
func (h *Handler) Get(c *fiber.Ctx) error {
	tx, err := h.service.Get(c.UserContext(), c.Params("txId"))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(toResponse(tx))
}

// Balance returns the derived balance for a wallet, addressed by name.
func (h *Handler) Balance(c *fiber.Ctx) error {
	name := c.Params("name")
	balance := h.service.Balance(c.UserContext(), name)
	return c.JSON(fiber.Map{
		"wallet":    name,
		"balance":   balance.String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Deposit records an already-settled transfer from a team wallet into a client wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	input, err := parseSettled(c)
	if err != nil {
		return err
	}
	tx, err := h.service.Deposit(c.UserContext(), DepositInput{
		TeamWallet:   input.TeamWallet,
		ClientWallet: input.ClientWallet,
		Amount:       input.amount,
		Reason:       input.Reason,
		ExternalRef:  input.ExternalRef,
		Fee:          input.fee,
	})
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// Withdraw records an already-settled transfer from a client wallet back to a team wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	input, err := parseSettled(c)
	if err != nil {
		return err
	}
	tx, err := h.service.Withdraw(c.UserContext(), WithdrawalInput{
		ClientWallet: input.ClientWallet,
		TeamWallet:   input.TeamWallet,
		Amount:       input.amount,
		Reason:       input.Reason,
		ExternalRef:  input.ExternalRef,
		Fee:          input.fee,
	})
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// SetStatus updates the settlement state of an entry.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := h.service.SetStatus(c.UserContext(), c.Params("txId"), Status(req.Status))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(toResponse(tx))
}

// Remove deletes an entry. Administrative use only.
func (h *Handler) Remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), c.Params("txId")); err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// Stats returns aggregate ledger statistics.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	byKind := make(map[string]string, len(stats.VolumeByKind))
	for kind, vol := range stats.VolumeByKind {
		byKind[kind] = vol.String()
	}
	return c.JSON(fiber.Map{
		"total":            stats.Total,
		"pending":          stats.Pending,
		"completed":        stats.Completed,
		"failed":           stats.Failed,
		"completed_volume": stats.CompletedVolume.String(),
		"volume_by_kind":   byKind,
	})
}

type settledInput struct {
	settledRequest
	amount decimal.Decimal
	fee    decimal.Decimal
}

func parseSettled(c *fiber.Ctx) (settledInput, error) {
	var req settledRequest
	if err := c.BodyParser(&req); err != nil {
		return settledInput{}, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return settledInput{}, fiber.NewError(http.StatusBadRequest, "amount is not a valid number")
	}
	fee, err := parseOptionalDecimal(req.Fee)
	if err != nil {
		return settledInput{}, fiber.NewError(http.StatusBadRequest, "fee is not a valid number")
	}
	return settledInput{settledRequest: req, amount: amount, fee: fee}, nil
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrSenderRequired),
		errors.Is(err, ErrReceiverRequired),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrBadAmount),
		errors.Is(err, ErrNonPositiveAmount),
		errors.Is(err, ErrUnknownWallet),
		errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
