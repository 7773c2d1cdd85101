package wallet

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Wallet
	byName  map[string]string
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		storage: make(map[string]Wallet),
		byName:  make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[w.Name]; exists {
		return ErrNameTaken
	}
	r.storage[w.ID] = w
	r.byName[w.Name] = w.ID
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.storage[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) GetByName(_ context.Context, name string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return r.storage[id], nil
}

func (r *memoryRepository) List(_ context.Context, f Filter) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var wallets []Wallet
	for _, w := range r.storage {
		if f.Kind != "" && w.Kind != f.Kind {
			continue
		}
		if f.ActiveOnly && !w.Active {
			continue
		}
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].CreatedAt.After(wallets[j].CreatedAt)
	})
	return wallets, nil
}

func (r *memoryRepository) Rename(_ context.Context, id, name string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	if other, exists := r.byName[name]; exists && other != id {
		return ErrNameTaken
	}
	delete(r.byName, w.Name)
	w.Name = name
	w.UpdatedAt = at
	r.storage[id] = w
	r.byName[name] = id
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	w.Active = active
	w.UpdatedAt = at
	r.storage[id] = w
	return nil
}
