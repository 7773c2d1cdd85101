package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrSenderRequired occurs when a transaction is missing its sending wallet.
	ErrSenderRequired = errors.New("sender wallet is required")
	// ErrReceiverRequired occurs when a transaction is missing its receiving wallet.
	ErrReceiverRequired = errors.New("receiver wallet is required")
	// ErrSelfTransfer indicates sender and receiver name the same wallet.
	ErrSelfTransfer = errors.New("sender and receiver must differ")
	// ErrBadAmount indicates the amount did not parse as a number.
	ErrBadAmount = errors.New("amount is not a valid number")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrUnknownWallet indicates a wallet name absent from the registry.
	ErrUnknownWallet = errors.New("unknown wallet")
	// ErrInsufficientFunds occurs only when the negative-balance policy is
	// disabled and the sender's balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidStatus indicates an unknown transaction status.
	ErrInvalidStatus = errors.New("invalid transaction status")
	// ErrNotFound indicates no transaction matches the identifier.
	ErrNotFound = errors.New("transaction not found")
)

// Status tracks settlement state. Only completed entries count toward balances.
type Status string

const (
	// StatusPending marks an entry awaiting settlement.
	StatusPending Status = "pending"
	// StatusCompleted marks a settled entry.
	StatusCompleted Status = "completed"
	// StatusFailed marks an entry that will never settle.
	StatusFailed Status = "failed"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Common transaction kinds. Kind is free form; the desk also records reason
// codes such as "deposito_iniziale" and "prelievo" directly.
const (
	KindDeposit        = "deposit"
	KindInitialDeposit = "deposit_initial"
	KindRedeposit      = "re-deposit"
	KindWithdrawal     = "withdrawal"
	KindTransfer       = "transfer"
)

// Transaction is an append-only ledger entry. Wallets are referenced by
// surrogate ID; the display names are denormalized at record time for
// human-readable listings.
type Transaction struct {
	ID           string
	SenderID     string
	ReceiverID   string
	SenderName   string
	ReceiverName string
	Amount       decimal.Decimal
	Currency     string
	Kind         string
	Status       Status
	Note         string
	// TxHash correlates the entry with an external transfer. Defaulted from
	// the entry's content when absent; advisory only, never a dedup key.
	TxHash string
	// Fee is the network commission, informational only. It is not
	// subtracted from computed balances.
	Fee       decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	WalletID string // matches either side of the entry
	Status   Status
	Kind     string
	Limit    int
}

// Store is the append-only transaction log backing the ledger.
type Store interface {
	Append(ctx context.Context, tx Transaction) error
	Get(ctx context.Context, id string) (Transaction, error)
	List(ctx context.Context, f Filter) ([]Transaction, error)
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error
	// Delete is the administrative removal path. Normal operation never
	// deletes entries.
	Delete(ctx context.Context, id string) error
	// SumCompleted returns the completed amounts received by and sent from
	// the wallet.
	SumCompleted(ctx context.Context, walletID string) (received, sent decimal.Decimal, err error)
}
