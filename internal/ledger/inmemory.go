package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu      sync.RWMutex
	entries []Transaction
	byID    map[string]int
}

// NewInMemoryStore creates a concurrency-safe in-memory transaction log for
// tests and development mode.
func NewInMemoryStore() Store {
	return &inMemoryStore{byID: make(map[string]int)}
}

func (s *inMemoryStore) Append(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tx.ID] = len(s.entries)
	s.entries = append(s.entries, tx)
	return nil
}

func (s *inMemoryStore) Get(_ context.Context, id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return s.entries[idx], nil
}

func (s *inMemoryStore) List(_ context.Context, f Filter) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	// newest first: walk the append-ordered log backwards
	for i := len(s.entries) - 1; i >= 0; i-- {
		tx := s.entries[i]
		if tx.ID == "" {
			continue // deleted
		}
		if f.WalletID != "" && tx.SenderID != f.WalletID && tx.ReceiverID != f.WalletID {
			continue
		}
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		out = append(out, tx)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *inMemoryStore) SetStatus(_ context.Context, id string, status Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.entries[idx].Status = status
	s.entries[idx].UpdatedAt = at
	return nil
}

func (s *inMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.entries[idx] = Transaction{} // tombstone keeps indices stable
	return nil
}

func (s *inMemoryStore) SumCompleted(_ context.Context, walletID string) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	received, sent := decimal.Zero, decimal.Zero
	for _, tx := range s.entries {
		if tx.Status != StatusCompleted {
			continue
		}
		if tx.ReceiverID == walletID {
			received = received.Add(tx.Amount)
		}
		if tx.SenderID == walletID {
			sent = sent.Add(tx.Amount)
		}
	}
	return received, sent, nil
}
