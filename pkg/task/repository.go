package task

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// InMemoryRepository is a process-local Repository, the reference
// implementation used by tests and by any deployment that doesn't need
// durable task storage.
type InMemoryRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
}

// NewInMemoryRepository builds an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tasks: make(map[uuid.UUID]*Task)}
}

func (r *InMemoryRepository) Save(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, agenterr.TaskNotFound(id.String())
	}
	return t, nil
}
