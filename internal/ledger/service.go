package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cpadesk/cpadesk/internal/notification"
	"github.com/cpadesk/cpadesk/internal/wallet"
)

// Service owns the append-only transaction log and answers balance and
// statistics queries derived from it. It is stateless between calls; the
// store is the single source of truth and is re-queried every time.
type Service struct {
	store         Store
	wallets       *wallet.Service
	notifier      notification.Notifier
	logger        *slog.Logger
	allowNegative bool
}

// NewService constructs the ledger service. allowNegative selects the
// overdraft policy: when false, transfers that would push a client wallet
// below zero are rejected with ErrInsufficientFunds. Team wallets front the
// desk's own liquidity and are never balance-checked; otherwise no funds
// could ever enter the system.
func NewService(store Store, wallets *wallet.Service, notifier notification.Notifier, logger *slog.Logger, allowNegative bool) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:         store,
		wallets:       wallets,
		notifier:      notifier,
		logger:        logger,
		allowNegative: allowNegative,
	}
}

// AddInput captures a transaction to record. Amount arrives as the raw string
// the caller typed; it must parse as a positive number.
type AddInput struct {
	Sender   string
	Receiver string
	Amount   string
	Currency string
	Kind     string
	Status   Status
	Note     string
	TxHash   string
	Fee      decimal.Decimal
}

// Add validates the input and appends a single entry to the log. Either the
// row is appended or nothing happens. Status defaults to pending; callers
// recording already-settled off-system events pass StatusCompleted.
func (s *Service) Add(ctx context.Context, input AddInput) (Transaction, error) {
	sender := strings.TrimSpace(input.Sender)
	receiver := strings.TrimSpace(input.Receiver)
	if sender == "" {
		return Transaction{}, ErrSenderRequired
	}
	if receiver == "" {
		return Transaction{}, ErrReceiverRequired
	}
	if sender == receiver {
		return Transaction{}, ErrSelfTransfer
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %q", ErrBadAmount, input.Amount)
	}
	if !amount.IsPositive() {
		return Transaction{}, ErrNonPositiveAmount
	}

	status := input.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}

	senderWallet, err := s.resolve(ctx, sender)
	if err != nil {
		return Transaction{}, err
	}
	receiverWallet, err := s.resolve(ctx, receiver)
	if err != nil {
		return Transaction{}, err
	}

	if !s.allowNegative && !senderWallet.Kind.Team() {
		balance, err := s.balanceByID(ctx, senderWallet.ID)
		if err != nil {
			return Transaction{}, fmt.Errorf("check sender balance: %w", err)
		}
		if balance.LessThan(amount) {
			return Transaction{}, ErrInsufficientFunds
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = receiverWallet.Currency
	}
	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		kind = KindTransfer
	}

	now := time.Now().UTC()
	txHash := strings.TrimSpace(input.TxHash)
	if txHash == "" {
		txHash = contentHash(sender, receiver, amount, now)
	}

	tx := Transaction{
		ID:           uuid.New().String(),
		SenderID:     senderWallet.ID,
		ReceiverID:   receiverWallet.ID,
		SenderName:   senderWallet.Name,
		ReceiverName: receiverWallet.Name,
		Amount:       amount,
		Currency:     currency,
		Kind:         kind,
		Status:       status,
		Note:         strings.TrimSpace(input.Note),
		TxHash:       txHash,
		Fee:          input.Fee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Append(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return tx, nil
}

// Balance derives the wallet balance by replaying completed entries:
// sum received minus sum sent. It fails open to zero on unknown wallets and
// backend errors so a degraded store never takes the dashboard down with it.
func (s *Service) Balance(ctx context.Context, walletName string) decimal.Decimal {
	w, err := s.wallets.GetByName(ctx, walletName)
	if err != nil {
		if !errors.Is(err, wallet.ErrNotFound) {
			s.logger.Warn("wallet lookup failed, balance defaults to zero", "wallet", walletName, "error", err)
		}
		return decimal.Zero
	}
	balance, err := s.balanceByID(ctx, w.ID)
	if err != nil {
		s.logger.Warn("balance query failed, balance defaults to zero", "wallet", walletName, "error", err)
		return decimal.Zero
	}
	return balance
}

func (s *Service) balanceByID(ctx context.Context, walletID string) (decimal.Decimal, error) {
	received, sent, err := s.store.SumCompleted(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}
	return received.Sub(sent), nil
}

// Query narrows transaction listings. The wallet is addressed by display name.
type Query struct {
	Wallet string
	Status Status
	Kind   string
	Limit  int
}

// Transactions returns the log, optionally filtered, newest first.
func (s *Service) Transactions(ctx context.Context, q Query) ([]Transaction, error) {
	f := Filter{Status: q.Status, Kind: q.Kind, Limit: q.Limit}
	if name := strings.TrimSpace(q.Wallet); name != "" {
		w, err := s.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		f.WalletID = w.ID
	}
	return s.store.List(ctx, f)
}

// Get fetches a single entry by identifier.
func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	return s.store.Get(ctx, id)
}

// DepositInput captures an already-settled transfer from a team wallet into a
// client wallet, e.g. an on-chain deposit that has cleared.
type DepositInput struct {
	TeamWallet   string
	ClientWallet string
	Amount       decimal.Decimal
	Reason       string
	ExternalRef  string
	Fee          decimal.Decimal
}

// Deposit records a completed transfer from the team wallet to the client
// wallet, with Kind set to the supplied reason code.
func (s *Service) Deposit(ctx context.Context, input DepositInput) (Transaction, error) {
	kind := strings.TrimSpace(input.Reason)
	if kind == "" {
		kind = KindDeposit
	}
	tx, err := s.Add(ctx, AddInput{
		Sender:   input.TeamWallet,
		Receiver: input.ClientWallet,
		Amount:   input.Amount.String(),
		Kind:     kind,
		Status:   StatusCompleted,
		TxHash:   input.ExternalRef,
		Fee:      input.Fee,
	})
	if err != nil {
		return Transaction{}, err
	}
	s.notify(ctx, notification.KindDeposit, tx.ReceiverName,
		fmt.Sprintf("Deposit of %s %s recorded into %s", tx.Amount, tx.Currency, tx.ReceiverName))
	return tx, nil
}

// WithdrawalInput captures an already-settled transfer from a client wallet
// back to a team wallet.
type WithdrawalInput struct {
	ClientWallet string
	TeamWallet   string
	Amount       decimal.Decimal
	Reason       string
	ExternalRef  string
	Fee          decimal.Decimal
}

// Withdraw records a completed transfer from the client wallet to the team
// wallet. The ledger performs no overdraft check under the permissive policy;
// a negative client balance is a reconciliation signal, not an error.
func (s *Service) Withdraw(ctx context.Context, input WithdrawalInput) (Transaction, error) {
	kind := strings.TrimSpace(input.Reason)
	if kind == "" {
		kind = KindWithdrawal
	}
	tx, err := s.Add(ctx, AddInput{
		Sender:   input.ClientWallet,
		Receiver: input.TeamWallet,
		Amount:   input.Amount.String(),
		Kind:     kind,
		Status:   StatusCompleted,
		TxHash:   input.ExternalRef,
		Fee:      input.Fee,
	})
	if err != nil {
		return Transaction{}, err
	}
	s.notify(ctx, notification.KindWithdrawal, tx.SenderName,
		fmt.Sprintf("Withdrawal of %s %s recorded from %s", tx.Amount, tx.Currency, tx.SenderName))
	return tx, nil
}

// SetStatus is the administrative path that moves an entry between pending,
// completed and failed. Completing an entry is what makes it count toward
// balances.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Transaction, error) {
	if !status.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.store.SetStatus(ctx, id, status, time.Now().UTC()); err != nil {
		return Transaction{}, err
	}
	return s.store.Get(ctx, id)
}

// Remove is the administrative delete path. Normal operation never removes
// ledger entries.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Stats aggregates the transaction log.
type Stats struct {
	Total           int
	Pending         int
	Completed       int
	Failed          int
	CompletedVolume decimal.Decimal
	VolumeByKind    map[string]decimal.Decimal
}

// Stats replays the full log and returns aggregate counts and completed
// volumes per kind.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	entries, err := s.store.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		CompletedVolume: decimal.Zero,
		VolumeByKind:    make(map[string]decimal.Decimal),
	}
	for _, tx := range entries {
		stats.Total++
		switch tx.Status {
		case StatusPending:
			stats.Pending++
		case StatusFailed:
			stats.Failed++
		case StatusCompleted:
			stats.Completed++
			stats.CompletedVolume = stats.CompletedVolume.Add(tx.Amount)
			if vol, ok := stats.VolumeByKind[tx.Kind]; ok {
				stats.VolumeByKind[tx.Kind] = vol.Add(tx.Amount)
			} else {
				stats.VolumeByKind[tx.Kind] = tx.Amount
			}
		}
	}
	return stats, nil
}

func (s *Service) resolve(ctx context.Context, name string) (wallet.Wallet, error) {
	w, err := s.wallets.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return wallet.Wallet{}, fmt.Errorf("%w: %s", ErrUnknownWallet, name)
		}
		return wallet.Wallet{}, fmt.Errorf("resolve wallet %s: %w", name, err)
	}
	return w, nil
}

func (s *Service) notify(ctx context.Context, kind, destination, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: destination, Body: body}); err != nil {
		s.logger.Warn("notification delivery failed", "kind", kind, "error", err)
	}
}

// contentHash derives the advisory tx_hash from the entry's content. The
// second-granularity timestamp keeps collisions possible; no uniqueness is
// enforced on it anywhere.
func contentHash(sender, receiver string, amount decimal.Decimal, ts time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", sender, receiver, amount.String(), ts.Unix())))
	return hex.EncodeToString(sum[:])
}
