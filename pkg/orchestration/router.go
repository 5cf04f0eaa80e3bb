package orchestration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RouteDecision is where an incoming message on a thread should go: the
// active handoff target if one exists, otherwise the orchestrator.
type RouteDecision struct {
	TargetAgentID string
	Prefix        string
	ViaHandoff    bool
}

// StreamRouter directs an incoming message to whichever agent currently
// owns a thread's conversation: the handoff target while a handoff is
// ACTIVE, the orchestrating agent otherwise (spec §4.6.3).
type StreamRouter struct {
	handoffs       *HandoffManager
	orchestratorID string
}

// NewStreamRouter builds a StreamRouter. orchestratorID is the agent
// routed to whenever no handoff is active for a thread.
func NewStreamRouter(handoffs *HandoffManager, orchestratorID string) *StreamRouter {
	return &StreamRouter{handoffs: handoffs, orchestratorID: orchestratorID}
}

// Route resolves the current destination for a thread.
func (r *StreamRouter) Route(ctx context.Context, threadID uuid.UUID, tenantID string) (RouteDecision, error) {
	session, err := r.handoffs.GetActiveHandoff(ctx, threadID, tenantID)
	if err != nil {
		return RouteDecision{}, err
	}
	if session != nil {
		return RouteDecision{
			TargetAgentID: session.TargetAgentID,
			Prefix:        fmt.Sprintf("[HANDOFF:%s]", session.TargetAgentID),
			ViaHandoff:    true,
		}, nil
	}
	return RouteDecision{
		TargetAgentID: r.orchestratorID,
		Prefix:        "[ORCHESTRATOR]",
		ViaHandoff:    false,
	}, nil
}

// IsHandoffActive reports whether the thread currently has an ACTIVE
// handoff.
func (r *StreamRouter) IsHandoffActive(ctx context.Context, threadID uuid.UUID, tenantID string) (bool, error) {
	session, err := r.handoffs.GetActiveHandoff(ctx, threadID, tenantID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}
