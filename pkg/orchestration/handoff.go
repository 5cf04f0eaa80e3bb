// Package orchestration implements agent-to-agent handoff, delegation,
// and stream routing (spec §4.6).
package orchestration

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

const maxSummaryLen = 2000

// HandoffState is a handoff session's lifecycle state.
type HandoffState string

const (
	HandoffActive    HandoffState = "ACTIVE"
	HandoffCompleted HandoffState = "COMPLETED"
	HandoffCancelled HandoffState = "CANCELLED"
)

// CompletionStatus is the outcome a target agent reports in a
// HandoffReturn.
type CompletionStatus string

const (
	CompletionCompleted CompletionStatus = "COMPLETED"
	CompletionCancelled CompletionStatus = "CANCELLED"
	CompletionError     CompletionStatus = "ERROR"
)

// HandoffRequest is the source→target handoff wire message (spec §4.6.1).
type HandoffRequest struct {
	ThreadID            uuid.UUID
	TenantID            string
	SourceAgentID       string
	TargetAgentID       string
	ContextSummary      string
	HandoffReason       string
	RecentMessageCount  int
	PreserveState       bool
	ReturnExpected      bool
	Timestamp           time.Time
}

// Validate checks the request's field constraints (spec §4.6.1): summary
// length, recent_message_count range.
func (r *HandoffRequest) Validate() error {
	if len(r.ContextSummary) > maxSummaryLen {
		return agenterr.ArgumentErrorf("ArgumentError", "context_summary exceeds %d characters", maxSummaryLen)
	}
	if r.RecentMessageCount == 0 {
		r.RecentMessageCount = 5
	}
	if r.RecentMessageCount < 1 || r.RecentMessageCount > 20 {
		return agenterr.ArgumentErrorf("ArgumentError", "recent_message_count must be in [1,20], got %d", r.RecentMessageCount)
	}
	return nil
}

// HandoffAccept is the target's response to a HandoffRequest.
type HandoffAccept struct {
	Accepted                 bool
	RejectionReason          string
	EstimatedDurationSeconds *int
	Timestamp                time.Time
}

// Validate checks EstimatedDurationSeconds >= 0 when present.
func (a *HandoffAccept) Validate() error {
	if a.EstimatedDurationSeconds != nil && *a.EstimatedDurationSeconds < 0 {
		return agenterr.ArgumentErrorf("ArgumentError", "estimated_duration_seconds must be >= 0")
	}
	return nil
}

// HandoffReturn is the target's report back to the source on completion.
type HandoffReturn struct {
	CompletionStatus CompletionStatus
	ResultSummary    string
	ArtifactsCreated []string
	Timestamp        time.Time
}

// Validate checks completion_status is a known value, result_summary's
// length, and that artifacts_created has no empty/whitespace entries.
func (r *HandoffReturn) Validate() error {
	switch r.CompletionStatus {
	case CompletionCompleted, CompletionCancelled, CompletionError:
	default:
		return agenterr.ArgumentErrorf("ArgumentError", "invalid completion_status %q", r.CompletionStatus)
	}
	if len(r.ResultSummary) > maxSummaryLen {
		return agenterr.ArgumentErrorf("ArgumentError", "result_summary exceeds %d characters", maxSummaryLen)
	}
	for _, a := range r.ArtifactsCreated {
		if strings.TrimSpace(a) == "" {
			return agenterr.ArgumentErrorf("ArgumentError", "artifacts_created must not contain empty entries")
		}
	}
	return nil
}

// HandoffSession is the persisted record of one handoff, stored in a
// conversation's state_metadata under the "handoff_session" key.
type HandoffSession struct {
	ThreadID      uuid.UUID
	TenantID      string
	SourceAgentID string
	TargetAgentID string
	State         HandoffState
	Request       HandoffRequest
	Accept        HandoffAccept
	Result        *HandoffReturn
	StartedAt     time.Time
	EndedAt       *time.Time
}

// ConversationStore is the narrow slice of ConversationRepository the
// HandoffManager needs: a keyed, tenant-checked read/mutate surface over
// a conversation's state_metadata.
type ConversationStore interface {
	LoadHandoff(ctx context.Context, threadID uuid.UUID, tenantID string) (*HandoffSession, error)
	SaveHandoff(ctx context.Context, threadID uuid.UUID, tenantID string, session *HandoffSession) error
}

// TargetAccepter resolves a target agent's Accept decision for an
// initiated handoff — narrow so HandoffManager doesn't need the full
// Agent/task machinery to ask "will you take this handoff".
type TargetAccepter interface {
	AcceptHandoff(ctx context.Context, req HandoffRequest) (HandoffAccept, error)
}

// HandoffManager enforces at most one ACTIVE handoff per thread, caching
// sessions in memory and recovering from persistence on a cache miss
// (spec §4.6.1 invariants: Concurrency, Recovery, Tenant isolation).
type HandoffManager struct {
	store   ConversationStore
	targets TargetAccepter

	mu    sync.Mutex
	cache map[uuid.UUID]*HandoffSession
}

// NewHandoffManager builds a HandoffManager over the given conversation
// store and target-agent accepter.
func NewHandoffManager(store ConversationStore, targets TargetAccepter) *HandoffManager {
	return &HandoffManager{store: store, targets: targets, cache: make(map[uuid.UUID]*HandoffSession)}
}

// InitiateHandoff fails with *agenterr.Error (InvalidTransition kind, code
// HandoffAlreadyActive) if an ACTIVE handoff already exists for the thread;
// otherwise asks the target, and when the target accepts persists a new
// ACTIVE session and caches it. It returns the target's Accept either way.
func (m *HandoffManager) InitiateHandoff(ctx context.Context, req HandoffRequest) (HandoffAccept, error) {
	if err := req.Validate(); err != nil {
		return HandoffAccept{}, err
	}

	existing, err := m.lookupActive(ctx, req.ThreadID, req.TenantID)
	if err != nil {
		return HandoffAccept{}, err
	}
	if existing != nil {
		return HandoffAccept{}, agenterr.HandoffAlreadyActive(req.ThreadID.String())
	}

	accept, err := m.targets.AcceptHandoff(ctx, req)
	if err != nil {
		return HandoffAccept{}, err
	}
	if err := accept.Validate(); err != nil {
		return HandoffAccept{}, err
	}

	session := &HandoffSession{
		ThreadID: req.ThreadID, TenantID: req.TenantID,
		SourceAgentID: req.SourceAgentID, TargetAgentID: req.TargetAgentID,
		State: HandoffActive, Request: req, Accept: accept, StartedAt: time.Now(),
	}
	if accept.Accepted {
		if err := m.store.SaveHandoff(ctx, req.ThreadID, req.TenantID, session); err != nil {
			return HandoffAccept{}, err
		}
		m.mu.Lock()
		m.cache[req.ThreadID] = session
		m.mu.Unlock()
	}
	return accept, nil
}

// GetActiveHandoff checks the cache first, then persistence, enforcing
// tenant match on whatever session is found.
func (m *HandoffManager) GetActiveHandoff(ctx context.Context, threadID uuid.UUID, tenantID string) (*HandoffSession, error) {
	return m.lookupActive(ctx, threadID, tenantID)
}

func (m *HandoffManager) lookupActive(ctx context.Context, threadID uuid.UUID, tenantID string) (*HandoffSession, error) {
	m.mu.Lock()
	cached, ok := m.cache[threadID]
	m.mu.Unlock()
	if ok {
		if cached.TenantID != tenantID {
			return nil, agenterr.ThreadNotFound(threadID.String())
		}
		if cached.State != HandoffActive {
			return nil, nil
		}
		return cached, nil
	}

	session, err := m.store.LoadHandoff(ctx, threadID, tenantID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.State != HandoffActive {
		return nil, nil
	}
	m.mu.Lock()
	m.cache[threadID] = session
	m.mu.Unlock()
	return session, nil
}

// CompleteHandoff writes the final COMPLETED/CANCELLED state (per the
// given return's completion status mapped to COMPLETED, anything else
// CANCELLED — the caller is expected to have routed ERROR through
// CancelHandoff's same code path) and evicts the cache entry.
func (m *HandoffManager) CompleteHandoff(ctx context.Context, threadID uuid.UUID, tenantID string, ret HandoffReturn) error {
	if err := ret.Validate(); err != nil {
		return err
	}
	state := HandoffCompleted
	if ret.CompletionStatus != CompletionCompleted {
		state = HandoffCancelled
	}
	return m.finish(ctx, threadID, tenantID, state, &ret)
}

// CancelHandoff writes state=CANCELLED and evicts the cache entry.
func (m *HandoffManager) CancelHandoff(ctx context.Context, threadID uuid.UUID, tenantID string) error {
	return m.finish(ctx, threadID, tenantID, HandoffCancelled, nil)
}

func (m *HandoffManager) finish(ctx context.Context, threadID uuid.UUID, tenantID string, state HandoffState, ret *HandoffReturn) error {
	session, err := m.lookupActive(ctx, threadID, tenantID)
	if err != nil {
		return err
	}
	if session == nil {
		return agenterr.ThreadNotFound(threadID.String())
	}
	now := time.Now()
	session.State = state
	session.Result = ret
	session.EndedAt = &now

	if err := m.store.SaveHandoff(ctx, threadID, tenantID, session); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.cache, threadID)
	m.mu.Unlock()
	return nil
}
