package task

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Task
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Task)}
}

func (r *memoryRepository) Create(_ context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[t.ID] = t
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.storage[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (r *memoryRepository) List(_ context.Context, f Filter) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []Task
	for _, t := range r.storage {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Assignee != "" && t.Assignee != f.Assignee {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *memoryRepository) Update(_ context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[t.ID]; !ok {
		return ErrNotFound
	}
	r.storage[t.ID] = t
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
