package client

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Client
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Client)}
}

func (r *memoryRepository) Create(_ context.Context, c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[c.ID] = c
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.storage[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) List(_ context.Context, activeOnly bool) ([]Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var clients []Client
	for _, c := range r.storage {
		if activeOnly && !c.Active {
			continue
		}
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

func (r *memoryRepository) Update(_ context.Context, c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[c.ID]; !ok {
		return ErrNotFound
	}
	r.storage[c.ID] = c
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}
	c.Active = active
	c.UpdatedAt = at
	r.storage[id] = c
	return nil
}
