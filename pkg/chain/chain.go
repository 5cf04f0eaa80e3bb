package chain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

var (
	stepsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agentcore_chain_steps_total",
		Help: "Reasoning chain steps recorded, by step type.",
	}, []string{"step_type"})
)

func init() {
	prometheus.MustRegister(stepsRecorded)
}

// Chain is an append-only log of reasoning steps for one task. It is safe
// for concurrent use: a single task is expected to own one chain, but the
// tool executor and ReAct driver may both append to it from different
// goroutines during streaming.
type Chain struct {
	ID            uuid.UUID
	TaskID        string
	AgentID       string
	TenantID      string
	Status        Status
	StartedAt     time.Time
	CompletedAt   *time.Time
	ChildChainIDs []uuid.UUID

	mu      sync.Mutex
	steps   []Step
	metrics Metrics
}

// New creates a chain in StatusRunning for the given task/agent.
func New(taskID, agentID, tenantID string) *Chain {
	return &Chain{
		ID:        uuid.New(),
		TaskID:    taskID,
		AgentID:   agentID,
		TenantID:  tenantID,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
}

// AddStep appends a step, assigning it the next contiguous step number and
// updating metrics atomically with the append (spec §3 invariant). It
// returns an error if the chain is no longer running, or if a TOOL_RESULT
// step's correlation id does not match any earlier TOOL_CALL step in the
// same chain (the chain-correlation invariant in spec §8).
func (c *Chain) AddStep(step Step) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Status != StatusRunning {
		return Step{}, agenterr.IntegrityErrorf("cannot add step to chain %s in status %s", c.ID, c.Status)
	}

	if step.Type == StepToolResult && step.ToolResult != nil {
		if !c.hasMatchingToolCallLocked(step.ToolResult.CorrelationID) {
			return Step{}, agenterr.IntegrityErrorf(
				"tool_result correlation_id %q has no matching tool_call in chain %s",
				step.ToolResult.CorrelationID, c.ID)
		}
	}

	step.StepNumber = len(c.steps)
	if step.ID == uuid.Nil {
		step.ID = uuid.New()
	}
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now()
	}

	c.steps = append(c.steps, step)
	c.metrics.apply(step)
	stepsRecorded.WithLabelValues(string(step.Type)).Inc()

	return step, nil
}

func (c *Chain) hasMatchingToolCallLocked(correlationID string) bool {
	for _, s := range c.steps {
		if s.Type == StepToolCall && s.ToolCall != nil && s.ToolCall.CorrelationID == correlationID {
			return true
		}
	}
	return false
}

// Steps returns a copy of the recorded steps in order.
func (c *Chain) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Metrics returns a copy of the current metrics snapshot.
func (c *Chain) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Finish transitions the chain to a terminal status. After this call,
// AddStep rejects further writes.
func (c *Chain) Finish(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Status != StatusRunning {
		return
	}
	c.Status = status
	now := time.Now()
	c.CompletedAt = &now
}

// Pause transitions a running chain to StatusPaused (e.g. INPUT_REQUIRED).
// A paused chain can resume by being set back to running via Resume.
func (c *Chain) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Status == StatusRunning {
		c.Status = StatusPaused
	}
}

// Resume transitions a paused chain back to running.
func (c *Chain) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Status == StatusPaused {
		c.Status = StatusRunning
	}
}

// AddChildChain records a sub-chain id created by a delegated sub-agent
// (spec §9 "Cyclic structures" — a pure identifier reference, never an
// embedded pointer; the child chain owns its own storage).
func (c *Chain) AddChildChain(childID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ChildChainIDs = append(c.ChildChainIDs, childID)
}
