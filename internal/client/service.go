package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cpadesk/cpadesk/internal/wallet"
)

// Service manages the client roster and keeps the wallet registry in step
// with it.
type Service struct {
	repo    Repository
	wallets *wallet.Service
}

// NewService builds a client service instance.
func NewService(repo Repository, wallets *wallet.Service) *Service {
	return &Service{repo: repo, wallets: wallets}
}

// CreateInput captures data required to register a client.
type CreateInput struct {
	Name          string
	Broker        string
	Platform      string
	AccountNumber string
	WalletAddress string
	CPAFee        decimal.Decimal
}

// Create registers a client. A non-empty wallet address provisions a
// client-kind ledger wallet named after the client, if one does not already
// exist.
func (s *Service) Create(ctx context.Context, input CreateInput) (Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, errors.New("client name is required")
	}
	if input.CPAFee.IsNegative() {
		return Client{}, errors.New("cpa fee cannot be negative")
	}

	now := time.Now().UTC()
	c := Client{
		ID:            uuid.New().String(),
		Name:          name,
		Broker:        strings.TrimSpace(input.Broker),
		Platform:      strings.TrimSpace(input.Platform),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		WalletAddress: strings.TrimSpace(input.WalletAddress),
		CPAFee:        input.CPAFee,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}

	if c.WalletAddress != "" {
		if err := s.ensureWallet(ctx, c.Name); err != nil {
			return Client{}, err
		}
	}
	return c, nil
}

// UpdateInput carries the mutable client fields. Nil pointers leave the
// current value untouched.
type UpdateInput struct {
	Name          *string
	Broker        *string
	Platform      *string
	AccountNumber *string
	WalletAddress *string
	CPAFee        *decimal.Decimal
}

// Update edits a client record. Setting a wallet address on a client that had
// none provisions the ledger wallet, same as Create. Renaming a client
// renames their wallet with them.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}

	hadAddress := c.WalletAddress != ""
	oldName := c.Name
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Client{}, errors.New("client name is required")
		}
		c.Name = name
	}
	if input.Broker != nil {
		c.Broker = strings.TrimSpace(*input.Broker)
	}
	if input.Platform != nil {
		c.Platform = strings.TrimSpace(*input.Platform)
	}
	if input.AccountNumber != nil {
		c.AccountNumber = strings.TrimSpace(*input.AccountNumber)
	}
	if input.WalletAddress != nil {
		c.WalletAddress = strings.TrimSpace(*input.WalletAddress)
	}
	if input.CPAFee != nil {
		if input.CPAFee.IsNegative() {
			return Client{}, errors.New("cpa fee cannot be negative")
		}
		c.CPAFee = *input.CPAFee
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Client{}, err
	}

	if !hadAddress && c.WalletAddress != "" {
		if err := s.ensureWallet(ctx, c.Name); err != nil {
			return Client{}, err
		}
	}
	// a renamed client keeps their wallet; the wallet follows the new name so
	// later lookups and deactivation still find it
	if c.Name != oldName {
		if err := s.renameWallet(ctx, oldName, c.Name); err != nil {
			return Client{}, err
		}
	}
	return c, nil
}

// Get retrieves a client by identifier.
func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns clients, newest first.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Client, error) {
	return s.repo.List(ctx, activeOnly)
}

// Deactivate retires a client and its same-named ledger wallet, if any.
// Neither is deleted; ledger history keeps contributing to balances.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false, time.Now().UTC()); err != nil {
		return err
	}
	w, err := s.wallets.GetByName(ctx, c.Name)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.wallets.Deactivate(ctx, w.ID)
}

func (s *Service) renameWallet(ctx context.Context, oldName, newName string) error {
	w, err := s.wallets.GetByName(ctx, oldName)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = s.wallets.Rename(ctx, w.ID, newName)
	return err
}

func (s *Service) ensureWallet(ctx context.Context, name string) error {
	_, err := s.wallets.Create(ctx, wallet.CreateInput{
		Name:  name,
		Kind:  wallet.KindClient,
		Owner: name,
	})
	if errors.Is(err, wallet.ErrNameTaken) {
		// wallet was provisioned earlier, nothing to do
		return nil
	}
	return err
}
