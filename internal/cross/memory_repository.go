package cross

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Cross
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Cross)}
}

func (r *memoryRepository) Create(_ context.Context, c Cross) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[c.ID] = c
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (Cross, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.storage[id]
	if !ok {
		return Cross{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) List(_ context.Context, status Status) ([]Cross, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var crosses []Cross
	for _, c := range r.storage {
		if status != "" && c.Status != status {
			continue
		}
		crosses = append(crosses, c)
	}
	sort.Slice(crosses, func(i, j int) bool {
		return crosses[i].OpenedAt.After(crosses[j].OpenedAt)
	})
	return crosses, nil
}

func (r *memoryRepository) Close(_ context.Context, id string, result decimal.Decimal, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status == StatusClosed {
		return ErrAlreadyClosed
	}
	c.Status = StatusClosed
	c.Result = result
	c.ClosedAt = at
	r.storage[id] = c
	return nil
}
