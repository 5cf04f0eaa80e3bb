// Package agentregistry holds the Agent contract, the process-local
// registry agents resolve against, and the four tenant-scoped repository
// contracts the core is built around (spec §6).
package agentregistry

import (
	"context"
	"sort"
	"sync"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/task"
)

// Agent is the contract every agent implementation satisfies: given a
// task, emit a sequence of events ending in exactly one TaskDoneEvent
// (spec §6). Implementations must not mutate the Task directly — only
// the Task Manager's apply_event reducer does that.
type Agent interface {
	ProcessTask(ctx context.Context, t *task.Task) (<-chan task.Event, error)
}

// Registry holds the set of agents the core can dispatch a task to,
// keyed by agent id. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds (or replaces) an agent under the given id.
func (r *Registry) Register(agentID string, a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agentID] = a
}

// Get looks up an agent by id, returning *agenterr.Error(AgentNotFound)
// on a miss.
func (r *Registry) Get(agentID string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[agentID]
	if !ok {
		return nil, agenterr.AgentNotFound(agentID)
	}
	return a, nil
}

// AgentExists implements task.AgentResolver.
func (r *Registry) AgentExists(agentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[agentID]
	return ok
}

// ListIDs returns every registered agent id, sorted.
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
