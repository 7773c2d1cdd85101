package cross

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cpadesk/cpadesk/internal/client"
	"github.com/cpadesk/cpadesk/internal/notification"
	"github.com/cpadesk/cpadesk/internal/wallet"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) byKind(kind string) []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Message
	for _, m := range n.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func newTestService(t *testing.T) (*Service, *captureNotifier, []client.Client) {
	t.Helper()
	ctx := context.Background()

	wallets := wallet.NewService(wallet.NewMemoryRepository())
	clients := client.NewService(client.NewMemoryRepository(), wallets)

	var roster []client.Client
	for _, name := range []string{"Long Leg", "Short Leg"} {
		c, err := clients.Create(ctx, client.CreateInput{Name: name})
		if err != nil {
			t.Fatalf("seed client %s: %v", name, err)
		}
		roster = append(roster, c)
	}

	notifier := &captureNotifier{}
	return NewService(NewMemoryRepository(), clients, notifier), notifier, roster
}

func TestOpenValidation(t *testing.T) {
	svc, _, roster := newTestService(t)
	ctx := context.Background()

	one := decimal.NewFromInt(1000)

	if _, err := svc.Open(ctx, OpenInput{Pair: " ", LongClientID: roster[0].ID, ShortClientID: roster[1].ID, Amount: one}); err == nil {
		t.Fatalf("expected blank pair rejection")
	}
	if _, err := svc.Open(ctx, OpenInput{Pair: "XAUUSD", LongClientID: roster[0].ID, ShortClientID: roster[1].ID, Amount: decimal.Zero}); err == nil {
		t.Fatalf("expected non-positive amount rejection")
	}
	if _, err := svc.Open(ctx, OpenInput{Pair: "XAUUSD", LongClientID: roster[0].ID, ShortClientID: roster[0].ID, Amount: one}); !errors.Is(err, ErrSameClient) {
		t.Fatalf("expected ErrSameClient, got %v", err)
	}
	if _, err := svc.Open(ctx, OpenInput{Pair: "XAUUSD", LongClientID: roster[0].ID, ShortClientID: "nope", Amount: one}); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
}

func TestOpenNormalizesPair(t *testing.T) {
	svc, _, roster := newTestService(t)
	ctx := context.Background()

	c, err := svc.Open(ctx, OpenInput{
		Pair:          " xauusd ",
		LongClientID:  roster[0].ID,
		ShortClientID: roster[1].ID,
		Amount:        decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Pair != "XAUUSD" {
		t.Fatalf("expected uppercased pair, got %q", c.Pair)
	}
	if c.Status != StatusOpen {
		t.Fatalf("expected open status, got %s", c.Status)
	}
}

func TestCloseSettlesAndNotifies(t *testing.T) {
	svc, notifier, roster := newTestService(t)
	ctx := context.Background()

	opened, err := svc.Open(ctx, OpenInput{
		Pair:          "EURUSD",
		LongClientID:  roster[0].ID,
		ShortClientID: roster[1].ID,
		Amount:        decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	result := decimal.NewFromFloat(137.5)
	closed, err := svc.Close(ctx, opened.ID, result)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}
	if !closed.Result.Equal(result) {
		t.Fatalf("expected result %s, got %s", result, closed.Result)
	}
	if closed.ClosedAt.IsZero() {
		t.Fatalf("expected ClosedAt to be set")
	}
	if got := notifier.byKind(notification.KindCrossClosed); len(got) != 1 {
		t.Fatalf("expected one close notification, got %d", len(got))
	}
}

func TestCloseTwiceFails(t *testing.T) {
	svc, _, roster := newTestService(t)
	ctx := context.Background()

	opened, err := svc.Open(ctx, OpenInput{
		Pair:          "GBPUSD",
		LongClientID:  roster[0].ID,
		ShortClientID: roster[1].ID,
		Amount:        decimal.NewFromInt(750),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(ctx, opened.ID, decimal.Zero); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := svc.Close(ctx, opened.ID, decimal.NewFromInt(1)); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if _, err := svc.Close(ctx, "missing", decimal.Zero); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByStatus(t *testing.T) {
	svc, _, roster := newTestService(t)
	ctx := context.Background()

	first, err := svc.Open(ctx, OpenInput{Pair: "A1", LongClientID: roster[0].ID, ShortClientID: roster[1].ID, Amount: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	if _, err := svc.Open(ctx, OpenInput{Pair: "B2", LongClientID: roster[0].ID, ShortClientID: roster[1].ID, Amount: decimal.NewFromInt(200)}); err != nil {
		t.Fatalf("open second: %v", err)
	}
	if _, err := svc.Close(ctx, first.ID, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("close: %v", err)
	}

	open, err := svc.List(ctx, StatusOpen)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].Pair != "B2" {
		t.Fatalf("unexpected open list: %+v", open)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both crosses, got %d", len(all))
	}
}
