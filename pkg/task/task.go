// Package task implements the Task model and its state machine, and the
// TaskManager that creates tasks and drives an agent's event stream to
// completion with durable per-event persistence (spec §4.1).
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// State is a task's lifecycle state (spec §3).
type State string

const (
	StateSubmitted     State = "submitted"
	StateWorking       State = "working"
	StateInputRequired State = "input_required"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
	StateCancelled     State = "cancelled"
)

// IsTerminal reports whether s is one of the three terminal states.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// legalTransitions enumerates every allowed (from, to) pair (spec §3):
// SUBMITTED→WORKING→{COMPLETED|FAILED|CANCELLED|INPUT_REQUIRED},
// INPUT_REQUIRED→WORKING.
var legalTransitions = map[State]map[State]bool{
	StateSubmitted: {StateWorking: true},
	StateWorking: {
		StateCompleted:     true,
		StateFailed:        true,
		StateCancelled:     true,
		StateInputRequired: true,
	},
	StateInputRequired: {StateWorking: true},
}

// CanTransition reports whether from→to is a legal transition.
func CanTransition(from, to State) bool {
	return legalTransitions[from][to]
}

// MessagePart is one piece of a message's content.
type MessagePart struct {
	Text string
}

// Message is one entry in a task's history.
type Message struct {
	Role  string // "user" or "agent"
	Parts []MessagePart
}

// Artifact is a named output attached to a task.
type Artifact struct {
	Name      string
	MediaType string
	Content   string
}

// TaskError is the {code, message} attached to a task that enters FAILED.
type TaskError struct {
	Code    string
	Message string
}

// Task is one unit of work tracked by the Task Manager.
type Task struct {
	ID           uuid.UUID
	AgentID      string
	TenantID     string
	UserID       string
	ParentTaskID *uuid.UUID

	State     State
	SkillName string // name of the skill handling this task, if any
	History   []Message
	Artifacts []Artifact
	Error     *TaskError

	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.RWMutex
}

// New creates a task in SUBMITTED for the given agent and request fields.
func New(agentID, tenantID, userID string, initialParts []MessagePart, parentTaskID *uuid.UUID) *Task {
	now := time.Now()
	t := &Task{
		ID:           uuid.New(),
		AgentID:      agentID,
		TenantID:     tenantID,
		UserID:       userID,
		ParentTaskID: parentTaskID,
		State:        StateSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(initialParts) > 0 {
		t.History = append(t.History, Message{Role: "user", Parts: initialParts})
	}
	return t
}

// Snapshot returns a shallow copy safe to read without holding the lock
// further (history/artifacts slices are shared but never mutated in
// place — every mutator appends a fresh slice).
func (t *Task) Snapshot() Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return *t
}

// SetState transitions the task, rejecting illegal transitions per §3.
func (t *Task) SetState(newState State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State == newState {
		return nil
	}
	if !CanTransition(t.State, newState) {
		return agenterr.InvalidTransitionErr(string(t.State), string(newState))
	}
	t.State = newState
	t.UpdatedAt = time.Now()
	return nil
}

// ApplyStatus sets the task's state unconditionally, bypassing the
// transition-legality check SetState enforces. Used by the internal
// apply_event reducer (spec §4.1), which is trusted to reflect an
// agent's own authoritative state machine rather than an external
// caller's request.
func (t *Task) ApplyStatus(newState State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = newState
	t.UpdatedAt = time.Now()
}

// AppendMessage appends an agent-authored message to the task history.
func (t *Task) AppendMessage(role string, parts []MessagePart) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.History = append(t.History, Message{Role: role, Parts: parts})
	t.UpdatedAt = time.Now()
}

// SetSkillName records which skill is handling this task, for
// list_by_skill lookups (spec §6).
func (t *Task) SetSkillName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.SkillName = name
	t.UpdatedAt = time.Now()
}

// AddArtifact appends an artifact.
func (t *Task) AddArtifact(a Artifact) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Artifacts = append(t.Artifacts, a)
	t.UpdatedAt = time.Now()
}

// Fail forces the task into FAILED and attaches the given error, even
// from a state that would otherwise reject the transition directly —
// ErrorEvent and a DoneEvent(FAILED) with no attached error both need
// this (spec §4.1 apply_event rules).
func (t *Task) Fail(code, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = StateFailed
	t.Error = &TaskError{Code: code, Message: message}
	t.UpdatedAt = time.Now()
}

// Finish forces the task into finalState (a DoneEvent). If finalState is
// FAILED and no error has been attached yet, a generic one is recorded.
func (t *Task) Finish(finalState State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = finalState
	if finalState == StateFailed && t.Error == nil {
		t.Error = &TaskError{Code: "UnknownError", Message: "task failed with no attached error"}
	}
	t.UpdatedAt = time.Now()
}
