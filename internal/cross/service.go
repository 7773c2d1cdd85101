package cross

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cpadesk/cpadesk/internal/client"
	"github.com/cpadesk/cpadesk/internal/notification"
)

var (
	// ErrSameClient indicates both legs reference the same client.
	ErrSameClient = errors.New("long and short legs must use different clients")
	// ErrUnknownClient indicates a leg references a client not on the roster.
	ErrUnknownClient = errors.New("unknown client")
)

// Service manages cross positions.
type Service struct {
	repo     Repository
	clients  *client.Service
	notifier notification.Notifier
}

// NewService builds a cross service instance.
func NewService(repo Repository, clients *client.Service, notifier notification.Notifier) *Service {
	return &Service{repo: repo, clients: clients, notifier: notifier}
}

// OpenInput captures data required to open a cross.
type OpenInput struct {
	Pair          string
	LongClientID  string
	ShortClientID string
	LongBroker    string
	ShortBroker   string
	Amount        decimal.Decimal
	Note          string
}

// Open records a new cross after checking both legs reference distinct,
// existing clients.
func (s *Service) Open(ctx context.Context, input OpenInput) (Cross, error) {
	pair := strings.ToUpper(strings.TrimSpace(input.Pair))
	if pair == "" {
		return Cross{}, errors.New("pair is required")
	}
	if !input.Amount.IsPositive() {
		return Cross{}, errors.New("amount must be positive")
	}
	if input.LongClientID == input.ShortClientID {
		return Cross{}, ErrSameClient
	}
	for _, clientID := range []string{input.LongClientID, input.ShortClientID} {
		if _, err := s.clients.Get(ctx, clientID); err != nil {
			if errors.Is(err, client.ErrNotFound) {
				return Cross{}, fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
			}
			return Cross{}, err
		}
	}

	c := Cross{
		ID:            uuid.New().String(),
		Pair:          pair,
		LongClientID:  input.LongClientID,
		ShortClientID: input.ShortClientID,
		LongBroker:    strings.TrimSpace(input.LongBroker),
		ShortBroker:   strings.TrimSpace(input.ShortBroker),
		Amount:        input.Amount,
		Status:        StatusOpen,
		Result:        decimal.Zero,
		Note:          strings.TrimSpace(input.Note),
		OpenedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Cross{}, err
	}
	return c, nil
}

// Close settles an open cross with its realized result.
func (s *Service) Close(ctx context.Context, id string, result decimal.Decimal) (Cross, error) {
	if err := s.repo.Close(ctx, id, result, time.Now().UTC()); err != nil {
		return Cross{}, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cross{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindCrossClosed,
			Destination: c.Pair,
			Body:        fmt.Sprintf("Cross %s on %s closed with result %s", c.ID, c.Pair, c.Result),
		})
	}
	return c, nil
}

// Get retrieves a cross by identifier.
func (s *Service) Get(ctx context.Context, id string) (Cross, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns crosses, optionally restricted by status, newest first.
func (s *Service) List(ctx context.Context, status Status) ([]Cross, error) {
	return s.repo.List(ctx, status)
}
