package orchestration

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/event"
)

// Strategy selects how DelegateToAgents fans a message out to multiple
// target agents (spec §4.6.2).
type Strategy string

const (
	StrategyParallel     Strategy = "PARALLEL"
	StrategySequential   Strategy = "SEQUENTIAL"
	StrategyFirstSuccess Strategy = "FIRST_SUCCESS"
)

// SubAgentResult is one target agent's outcome from a delegation call.
type SubAgentResult struct {
	AgentID   string
	Success   bool
	Response  string
	Error     string
	LatencyMS int64
}

// AgentExecutor drives a single target agent's event stream for one
// delegated message — narrow so DelegationManager doesn't need the full
// task.Manager/registry wiring, just "run this agent and give me its
// events".
type AgentExecutor interface {
	Execute(ctx context.Context, agentID, threadID, tenantID, userID, message string) (<-chan event.Event, error)
}

// DelegationManager fans a message out to one or more target agents
// under PARALLEL, SEQUENTIAL, or FIRST_SUCCESS semantics (spec §4.6.2).
type DelegationManager struct {
	executor    AgentExecutor
	callTimeout time.Duration
}

// NewDelegationManager builds a DelegationManager. callTimeout bounds a
// single target agent's execution; zero means no per-call timeout beyond
// the caller's context.
func NewDelegationManager(executor AgentExecutor, callTimeout time.Duration) *DelegationManager {
	return &DelegationManager{executor: executor, callTimeout: callTimeout}
}

// DelegateToAgents dispatches message to every agent in targetAgentIDs
// under the given strategy. An empty target list or unrecognized
// strategy is an *ArgumentError.
func (m *DelegationManager) DelegateToAgents(ctx context.Context, threadID, tenantID, userID, message string, targetAgentIDs []string, strategy Strategy) ([]SubAgentResult, error) {
	if len(targetAgentIDs) == 0 {
		return nil, agenterr.ArgumentErrorf("ArgumentError", "target_cards must not be empty")
	}

	switch strategy {
	case StrategyParallel:
		return m.delegateParallel(ctx, threadID, tenantID, userID, message, targetAgentIDs), nil
	case StrategySequential:
		return m.delegateSequential(ctx, threadID, tenantID, userID, message, targetAgentIDs), nil
	case StrategyFirstSuccess:
		return m.delegateFirstSuccess(ctx, threadID, tenantID, userID, message, targetAgentIDs), nil
	default:
		return nil, agenterr.ArgumentErrorf("ArgumentError", "unknown delegation strategy %q", strategy)
	}
}

type indexedResult struct {
	index  int
	result SubAgentResult
}

// delegateParallel runs every target concurrently and collects all
// results in input order; one agent's failure never aborts the others.
func (m *DelegationManager) delegateParallel(ctx context.Context, threadID, tenantID, userID, message string, targetAgentIDs []string) []SubAgentResult {
	group, gctx := errgroup.WithContext(ctx)
	resultsChan := make(chan indexedResult, len(targetAgentIDs))

	for i, agentID := range targetAgentIDs {
		i, agentID := i, agentID
		group.Go(func() error {
			resultsChan <- indexedResult{index: i, result: m.executeAgent(gctx, agentID, threadID, tenantID, userID, message)}
			return nil
		})
	}

	doneChan := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(resultsChan)
		close(doneChan)
	}()

	results := make([]SubAgentResult, len(targetAgentIDs))
	for r := range resultsChan {
		results[r.index] = r.result
	}
	<-doneChan
	return results
}

// delegateSequential runs targets one at a time in order; a failure
// doesn't abort the remaining targets.
func (m *DelegationManager) delegateSequential(ctx context.Context, threadID, tenantID, userID, message string, targetAgentIDs []string) []SubAgentResult {
	results := make([]SubAgentResult, len(targetAgentIDs))
	for i, agentID := range targetAgentIDs {
		results[i] = m.executeAgent(ctx, agentID, threadID, tenantID, userID, message)
	}
	return results
}

// delegateFirstSuccess runs targets concurrently and cancels the rest as
// soon as one succeeds. If every target fails, all failures are
// returned.
func (m *DelegationManager) delegateFirstSuccess(ctx context.Context, threadID, tenantID, userID, message string, targetAgentIDs []string) []SubAgentResult {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultsChan := make(chan SubAgentResult, len(targetAgentIDs))
	var wg sync.WaitGroup
	for _, agentID := range targetAgentIDs {
		agentID := agentID
		wg.Add(1)
		go func() {
			defer wg.Done()
			resultsChan <- m.executeAgent(raceCtx, agentID, threadID, tenantID, userID, message)
		}()
	}
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var all []SubAgentResult
	for r := range resultsChan {
		all = append(all, r)
		if r.Success {
			cancel()
		}
	}

	for _, r := range all {
		if r.Success {
			return []SubAgentResult{r}
		}
	}
	return all
}

func (m *DelegationManager) executeAgent(ctx context.Context, agentID, threadID, tenantID, userID, message string) SubAgentResult {
	start := time.Now()
	callCtx := ctx
	if m.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.callTimeout)
		defer cancel()
	}

	stream, err := m.executor.Execute(callCtx, agentID, threadID, tenantID, userID, message)
	if err != nil {
		return SubAgentResult{AgentID: agentID, Success: false, Error: err.Error(), LatencyMS: time.Since(start).Milliseconds()}
	}

	var text strings.Builder
	var failed bool
	var errMsg string
	for ev := range stream {
		switch ev.Kind {
		case event.KindMessage:
			for _, p := range ev.MessageParts {
				text.WriteString(p.Text)
			}
		case event.KindError:
			failed = true
			errMsg = ev.ErrorMessage
		}
	}

	latency := time.Since(start).Milliseconds()
	if failed {
		return SubAgentResult{AgentID: agentID, Success: false, Error: errMsg, LatencyMS: latency}
	}
	if callCtx.Err() != nil {
		return SubAgentResult{AgentID: agentID, Success: false, Error: callCtx.Err().Error(), LatencyMS: latency}
	}
	return SubAgentResult{AgentID: agentID, Success: true, Response: text.String(), LatencyMS: latency}
}

// SynthesizeResponses combines sub-agent results into a single response
// string (spec §4.6.2).
func SynthesizeResponses(results []SubAgentResult) string {
	if len(results) == 0 {
		return "No responses received"
	}

	var successes []SubAgentResult
	for _, r := range results {
		if r.Success {
			successes = append(successes, r)
		}
	}
	if len(successes) == 0 {
		return "All sub-agents failed"
	}
	if len(successes) == 1 {
		return successes[0].Response
	}

	var sb strings.Builder
	for i, r := range successes {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("From ")
		sb.WriteString(r.AgentID)
		sb.WriteString(":\n")
		sb.WriteString(r.Response)
	}
	return sb.String()
}
