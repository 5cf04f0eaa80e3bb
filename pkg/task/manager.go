package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// Repository persists tasks. ProcessTask writes the task back after every
// applied event, before forwarding it downstream (spec §4.1 persistence
// discipline).
type Repository interface {
	Save(ctx context.Context, t *Task) error
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
}

// AgentResolver looks up an agent by id for CreateTask's existence check.
// A narrow duck-typed contract — this package never imports the agent
// registry package.
type AgentResolver interface {
	AgentExists(agentID string) bool
}

// CreateRequest carries a new task's caller-supplied fields (spec §4.1).
type CreateRequest struct {
	TenantID     string
	UserID       string
	Parts        []MessagePart
	ParentTaskID *uuid.UUID
}

// Manager creates tasks, enforces transition legality, and persists task
// state through a Repository.
type Manager struct {
	Repo    Repository
	Agents  AgentResolver
}

// NewManager builds a Manager over the given repository and agent
// resolver.
func NewManager(repo Repository, agents AgentResolver) *Manager {
	return &Manager{Repo: repo, Agents: agents}
}

// CreateTask validates the agent exists, builds a new SUBMITTED task, and
// persists it.
func (m *Manager) CreateTask(ctx context.Context, agentID string, req CreateRequest) (*Task, error) {
	if !m.Agents.AgentExists(agentID) {
		return nil, agenterr.AgentNotFound(agentID)
	}
	t := New(agentID, req.TenantID, req.UserID, req.Parts, req.ParentTaskID)
	if err := m.Repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTask loads a task by id.
func (m *Manager) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := m.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, agenterr.TaskNotFound(id.String())
	}
	return t, nil
}

// UpdateState transitions a task and persists the result, rejecting
// illegal transitions (spec §3/§4.1).
func (m *Manager) UpdateState(ctx context.Context, id uuid.UUID, newState State) (*Task, error) {
	t, err := m.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.SetState(newState); err != nil {
		return nil, err
	}
	if err := m.Repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Event is the narrow contract an event-stream entry must satisfy to be
// applied to a task by ProcessTask. pkg/event's concrete event type
// implements this by mutating the task directly, so this package never
// needs to import pkg/event's tagged union.
type Event interface {
	Apply(t *Task)
}

// Agent is the narrow contract ProcessTask drives: given a task, yield a
// stream of events until the agent is done.
type Agent interface {
	ProcessTask(ctx context.Context, t *Task) (<-chan Event, error)
}

// ProcessTask resolves nothing itself (the caller already has the
// concrete Agent) — it drives the given agent's event stream to
// completion: for each event, apply it, persist the task, then forward
// the event on the returned channel (spec §4.1).
func (m *Manager) ProcessTask(ctx context.Context, t *Task, agent Agent) (<-chan Event, error) {
	upstream, err := agent.ProcessTask(ctx, t)
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range upstream {
			ev.Apply(t)
			if err := m.Repo.Save(ctx, t); err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
