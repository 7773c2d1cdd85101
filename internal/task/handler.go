package task

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes task HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a task HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"` // RFC 3339
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toResponse(t Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
		Status:      string(t.Status),
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339Nano),
	}
	if !t.DueDate.IsZero() {
		resp.DueDate = t.DueDate.Format(time.RFC3339)
	}
	return resp
}

// Create adds a task to the board.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	var due time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "due_date must be RFC 3339")
		}
		due = parsed.UTC()
	}
	t, err := h.service.Create(c.UserContext(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		DueDate:     due,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(t))
}

// List returns tasks, optionally filtered by status or assignee.
func (h *Handler) List(c *fiber.Ctx) error {
	tasks, err := h.service.List(c.UserContext(), Filter{
		Status:   Status(c.Query("status")),
		Assignee: c.Query("assignee"),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	return c.JSON(out)
}

// Get returns a single task.
func (h *Handler) Get(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), c.Params("taskId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.JSON(toResponse(t))
}

// Assign hands a task to a team member.
func (h *Handler) Assign(c *fiber.Ctx) error {
	var req struct {
		Assignee string `json:"assignee"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	t, err := h.service.Assign(c.UserContext(), c.Params("taskId"), req.Assignee)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(toResponse(t))
}

// SetStatus moves a task across the board.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	t, err := h.service.SetStatus(c.UserContext(), c.Params("taskId"), Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidStatus):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(toResponse(t))
}

// Remove deletes a task.
func (h *Handler) Remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), c.Params("taskId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
