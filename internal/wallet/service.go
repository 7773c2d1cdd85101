package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultCurrency = "USDT"

// ErrInvalidKind indicates an unknown wallet kind was supplied.
var ErrInvalidKind = errors.New("invalid wallet kind")

// Service exposes wallet registry operations.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	Name     string
	Kind     Kind
	Currency string
	Owner    string
}

// Create registers a new wallet with a surrogate identifier.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallet, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Wallet{}, errors.New("wallet name is required")
	}
	if !input.Kind.Valid() {
		return Wallet{}, ErrInvalidKind
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now().UTC()
	w := Wallet{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      input.Kind,
		Currency:  currency,
		Owner:     strings.TrimSpace(input.Owner),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

// GetByName retrieves wallet metadata by display name.
func (s *Service) GetByName(ctx context.Context, name string) (Wallet, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

// GetByID retrieves wallet metadata by surrogate identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Wallet, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns wallets matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Wallet, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	return s.repo.List(ctx, f)
}

// ListTeam returns active principal and collaborator wallets, the set offered
// in assignment pickers. Inactive wallets are excluded here but still count
// toward balances.
func (s *Service) ListTeam(ctx context.Context) ([]Wallet, error) {
	all, err := s.repo.List(ctx, Filter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	team := all[:0]
	for _, w := range all {
		if w.Kind.Team() {
			team = append(team, w)
		}
	}
	return team, nil
}

// Rename changes a wallet's display name. Ledger history references the
// surrogate ID and is unaffected.
func (s *Service) Rename(ctx context.Context, id, newName string) (Wallet, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return Wallet{}, errors.New("wallet name is required")
	}
	if err := s.repo.Rename(ctx, id, name, time.Now().UTC()); err != nil {
		return Wallet{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate retires a wallet. It disappears from assignment lists but its
// transactions keep contributing to balances.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false, time.Now().UTC())
}

// Activate restores a retired wallet.
func (s *Service) Activate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, true, time.Now().UTC())
}
