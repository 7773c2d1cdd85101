package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cpadesk/cpadesk/internal/notification"
	"github.com/cpadesk/cpadesk/internal/wallet"
)

type testNotifier struct {
	last notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

func newTestLedger(t *testing.T, allowNegative bool) (*Service, *wallet.Service, *testNotifier) {
	t.Helper()
	wallets := wallet.NewService(wallet.NewMemoryRepository())
	notifier := &testNotifier{}
	svc := NewService(NewInMemoryStore(), wallets, notifier, nil, allowNegative)

	ctx := context.Background()
	for _, w := range []wallet.CreateInput{
		{Name: "Team", Kind: wallet.KindPrincipal, Currency: "USDT", Owner: "desk"},
		{Name: "Exchange", Kind: wallet.KindPrincipal, Currency: "USDT", Owner: "desk"},
		{Name: "ClientA", Kind: wallet.KindClient, Currency: "USDT", Owner: "ClientA"},
	} {
		if _, err := wallets.Create(ctx, w); err != nil {
			t.Fatalf("create wallet %s: %v", w.Name, err)
		}
	}
	return svc, wallets, notifier
}

func dec(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return d
}

func assertBalance(t *testing.T, svc *Service, walletName, want string) {
	t.Helper()
	got := svc.Balance(context.Background(), walletName)
	if !got.Equal(dec(t, want)) {
		t.Fatalf("balance of %s: expected %s, got %s", walletName, want, got)
	}
}

func TestAddValidation(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	cases := []struct {
		name  string
		input AddInput
		want  error
	}{
		{"missing sender", AddInput{Receiver: "ClientA", Amount: "10"}, ErrSenderRequired},
		{"missing receiver", AddInput{Sender: "Team", Amount: "10"}, ErrReceiverRequired},
		{"self transfer", AddInput{Sender: "Team", Receiver: "Team", Amount: "10"}, ErrSelfTransfer},
		{"non-numeric amount", AddInput{Sender: "Team", Receiver: "ClientA", Amount: "ten"}, ErrBadAmount},
		{"zero amount", AddInput{Sender: "Team", Receiver: "ClientA", Amount: "0"}, ErrNonPositiveAmount},
		{"negative amount", AddInput{Sender: "Team", Receiver: "ClientA", Amount: "-5"}, ErrNonPositiveAmount},
		{"unknown sender", AddInput{Sender: "Ghost", Receiver: "ClientA", Amount: "10"}, ErrUnknownWallet},
		{"unknown receiver", AddInput{Sender: "Team", Receiver: "Ghost", Amount: "10"}, ErrUnknownWallet},
		{"bad status", AddInput{Sender: "Team", Receiver: "ClientA", Amount: "10", Status: "done"}, ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// none of the rejected inputs may have left a row behind
	txs, err := svc.Transactions(ctx, Query{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty log after rejected inputs, got %d rows", len(txs))
	}
}

func TestAddDefaultsAndReadBack(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	created, err := svc.Add(ctx, AddInput{
		Sender:   "Team",
		Receiver: "ClientA",
		Amount:   "42.50",
		Kind:     KindInitialDeposit,
		Note:     "first funding",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("expected default status pending, got %s", created.Status)
	}
	if created.TxHash == "" {
		t.Fatalf("expected content-derived tx hash to be assigned")
	}
	if created.Currency != "USDT" {
		t.Fatalf("expected currency defaulted from receiver wallet, got %s", created.Currency)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.SenderName != "Team" || got.ReceiverName != "ClientA" {
		t.Fatalf("unexpected names: %s -> %s", got.SenderName, got.ReceiverName)
	}
	if !got.Amount.Equal(dec(t, "42.50")) || got.Kind != KindInitialDeposit || got.Note != "first funding" || got.TxHash != created.TxHash {
		t.Fatalf("read back differs from created: %+v vs %+v", got, created)
	}
}

func TestBalanceIgnoresPendingAndFailed(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	pending, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000"})
	if err != nil {
		t.Fatalf("add pending: %v", err)
	}
	assertBalance(t, svc, "Team", "0")
	assertBalance(t, svc, "Exchange", "0")

	if _, err := svc.SetStatus(ctx, pending.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	assertBalance(t, svc, "Team", "1000")
	assertBalance(t, svc, "Exchange", "-1000")

	failed, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "500"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if _, err := svc.SetStatus(ctx, failed.ID, StatusFailed); err != nil {
		t.Fatalf("fail: %v", err)
	}
	assertBalance(t, svc, "Team", "1000")
}

func TestDepositScenario(t *testing.T) {
	svc, _, notifier := newTestLedger(t, true)
	ctx := context.Background()

	// self-deposit is rejected
	if _, err := svc.Deposit(ctx, DepositInput{TeamWallet: "Team", ClientWallet: "Team", Amount: dec(t, "100")}); !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}

	// external funding of 1000 USDT into Team
	if _, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000", Status: StatusCompleted, Kind: KindDeposit}); err != nil {
		t.Fatalf("fund team: %v", err)
	}
	assertBalance(t, svc, "Team", "1000")

	tx, err := svc.Deposit(ctx, DepositInput{
		TeamWallet:   "Team",
		ClientWallet: "ClientA",
		Amount:       dec(t, "150"),
		Reason:       "deposito_iniziale",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if tx.Status != StatusCompleted {
		t.Fatalf("deposits settle immediately, got status %s", tx.Status)
	}
	if tx.Kind != "deposito_iniziale" {
		t.Fatalf("expected kind from reason code, got %s", tx.Kind)
	}
	assertBalance(t, svc, "Team", "850")
	assertBalance(t, svc, "ClientA", "150")

	if notifier.last.Kind != notification.KindDeposit {
		t.Fatalf("expected deposit notification, got %q", notifier.last.Kind)
	}
}

func TestWithdrawalAllowsOverdraft(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000", Status: StatusCompleted}); err != nil {
		t.Fatalf("fund team: %v", err)
	}
	if _, err := svc.Deposit(ctx, DepositInput{TeamWallet: "Team", ClientWallet: "ClientA", Amount: dec(t, "150")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 200 out of a 150 balance: permitted, negative balances are a
	// reconciliation signal for the desk
	if _, err := svc.Withdraw(ctx, WithdrawalInput{ClientWallet: "ClientA", TeamWallet: "Team", Amount: dec(t, "200"), Reason: "prelievo"}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	assertBalance(t, svc, "ClientA", "-50")
	assertBalance(t, svc, "Team", "1050")
}

func TestStrictPolicyRejectsOverdraft(t *testing.T) {
	svc, _, _ := newTestLedger(t, false)
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000", Status: StatusCompleted}); err != nil {
		t.Fatalf("fund team: %v", err)
	}
	if _, err := svc.Deposit(ctx, DepositInput{TeamWallet: "Team", ClientWallet: "ClientA", Amount: dec(t, "150")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := svc.Withdraw(ctx, WithdrawalInput{ClientWallet: "ClientA", TeamWallet: "Team", Amount: dec(t, "200")}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds under strict policy, got %v", err)
	}
	assertBalance(t, svc, "ClientA", "150")

	// an amount within balance still goes through
	if _, err := svc.Withdraw(ctx, WithdrawalInput{ClientWallet: "ClientA", TeamWallet: "Team", Amount: dec(t, "150")}); err != nil {
		t.Fatalf("withdraw within balance: %v", err)
	}
	assertBalance(t, svc, "ClientA", "0")
}

func TestStrictPolicyExemptsTeamWallets(t *testing.T) {
	svc, _, _ := newTestLedger(t, false)
	ctx := context.Background()

	// funding flows in from a principal wallet that starts at zero; the
	// policy must not lock funds out of the system
	if _, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000", Status: StatusCompleted}); err != nil {
		t.Fatalf("fund team under strict policy: %v", err)
	}
	assertBalance(t, svc, "Team", "1000")
	assertBalance(t, svc, "Exchange", "-1000")

	// the desk may front more than the team wallet holds
	if _, err := svc.Deposit(ctx, DepositInput{TeamWallet: "Team", ClientWallet: "ClientA", Amount: dec(t, "1200")}); err != nil {
		t.Fatalf("deposit beyond team balance: %v", err)
	}
	assertBalance(t, svc, "Team", "-200")

	// client wallets stay guarded
	if _, err := svc.Withdraw(ctx, WithdrawalInput{ClientWallet: "ClientA", TeamWallet: "Team", Amount: dec(t, "1300")}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds for client overdraft, got %v", err)
	}
}

func TestBalanceFailsOpenToZero(t *testing.T) {
	wallets := wallet.NewService(wallet.NewMemoryRepository())
	ctx := context.Background()
	if _, err := wallets.Create(ctx, wallet.CreateInput{Name: "Team", Kind: wallet.KindPrincipal}); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	svc := NewService(failingStore{}, wallets, nil, nil, true)

	if got := svc.Balance(ctx, "Team"); !got.IsZero() {
		t.Fatalf("expected zero balance when store is down, got %s", got)
	}
	if got := svc.Balance(ctx, "Nobody"); !got.IsZero() {
		t.Fatalf("expected zero balance for unknown wallet, got %s", got)
	}
}

func TestRemoveAndFilters(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	first, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "100", Status: StatusCompleted, Kind: KindDeposit})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.Add(ctx, AddInput{Sender: "Team", Receiver: "ClientA", Amount: "40", Kind: KindTransfer}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	byWallet, err := svc.Transactions(ctx, Query{Wallet: "ClientA"})
	if err != nil {
		t.Fatalf("filter by wallet: %v", err)
	}
	if len(byWallet) != 1 || byWallet[0].ReceiverName != "ClientA" {
		t.Fatalf("unexpected wallet filter result: %+v", byWallet)
	}

	byStatus, err := svc.Transactions(ctx, Query{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("filter by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != first.ID {
		t.Fatalf("unexpected status filter result: %+v", byStatus)
	}

	if err := svc.Remove(ctx, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after admin delete, got %v", err)
	}
	assertBalance(t, svc, "Team", "0")
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestLedger(t, true)
	ctx := context.Background()

	if _, err := svc.Add(ctx, AddInput{Sender: "Exchange", Receiver: "Team", Amount: "1000", Status: StatusCompleted, Kind: KindDeposit}); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := svc.Deposit(ctx, DepositInput{TeamWallet: "Team", ClientWallet: "ClientA", Amount: dec(t, "150"), Reason: "deposito_iniziale"}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Add(ctx, AddInput{Sender: "Team", Receiver: "ClientA", Amount: "25"}); err != nil {
		t.Fatalf("pending: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 2 || stats.Pending != 1 || stats.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.CompletedVolume.Equal(dec(t, "1150")) {
		t.Fatalf("expected completed volume 1150, got %s", stats.CompletedVolume)
	}
	if !stats.VolumeByKind["deposito_iniziale"].Equal(dec(t, "150")) {
		t.Fatalf("unexpected per-kind volume: %+v", stats.VolumeByKind)
	}
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Append(context.Context, Transaction) error { return errStoreDown }
func (failingStore) Get(context.Context, string) (Transaction, error) {
	return Transaction{}, errStoreDown
}
func (failingStore) List(context.Context, Filter) ([]Transaction, error) { return nil, errStoreDown }
func (failingStore) SetStatus(context.Context, string, Status, time.Time) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, string) error { return errStoreDown }
func (failingStore) SumCompleted(context.Context, string) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, errStoreDown
}
