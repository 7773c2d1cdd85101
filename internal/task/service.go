package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cpadesk/cpadesk/internal/notification"
)

// ErrInvalidStatus indicates an unknown task status.
var ErrInvalidStatus = errors.New("invalid task status")

// Service manages the team task board.
type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService builds a task service instance.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// CreateInput captures data required to create a task.
type CreateInput struct {
	Title       string
	Description string
	Assignee    string
	Priority    string
	DueDate     time.Time
}

// Create adds a task to the board. Assigned tasks notify the assignee.
func (s *Service) Create(ctx context.Context, input CreateInput) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, errors.New("task title is required")
	}
	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = PriorityNormal
	}

	now := time.Now().UTC()
	t := Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Assignee:    strings.TrimSpace(input.Assignee),
		Status:      StatusOpen,
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Task{}, err
	}
	if t.Assignee != "" {
		s.notifyAssignment(ctx, t)
	}
	return t, nil
}

// Assign hands a task to a team member and notifies them.
func (s *Service) Assign(ctx context.Context, id, assignee string) (Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Assignee = strings.TrimSpace(assignee)
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Task{}, err
	}
	if t.Assignee != "" {
		s.notifyAssignment(ctx, t)
	}
	return t, nil
}

// SetStatus moves a task across the board.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Task, error) {
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Get retrieves a task by identifier.
func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns tasks matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.repo.List(ctx, f)
}

// Remove deletes a task.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) notifyAssignment(ctx context.Context, t Task) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindTaskAssigned,
		Destination: t.Assignee,
		Body:        fmt.Sprintf("Task %q assigned to %s", t.Title, t.Assignee),
	})
}
