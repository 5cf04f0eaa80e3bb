package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/event"
	"github.com/relaycortex/agentcore/pkg/task"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// agentChainKey is the context map key a SubAgentTool call chains
// through so nested delegations can detect a cycle back to an ancestor.
const agentChainKey = "_agent_chain"

// SubAgentRunner drives a single sub-agent invocation to completion,
// returning its final task state, accumulated messages, and artifact
// names. Narrow so SubAgentTool doesn't need the full task.Manager/
// agentregistry wiring.
type SubAgentRunner interface {
	RunSubAgent(ctx context.Context, agentID, taskDescription string, callCtx tool.CallContext) (state task.State, messages []string, artifacts []string, err error)
}

// SubAgentTool exposes agent-to-agent delegation to the reasoning loop as
// an ordinary tool named "sub_agent" (spec §4.6.4), detecting delegation
// cycles via an "_agent_chain" list threaded through the call context.
type SubAgentTool struct {
	runner SubAgentRunner
}

// NewSubAgentTool builds the "sub_agent" tool over the given runner.
func NewSubAgentTool(runner SubAgentRunner) *SubAgentTool {
	return &SubAgentTool{runner: runner}
}

func (t *SubAgentTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        "sub_agent",
		Type:        chain.ToolOther,
		Description: "Delegate a task description to another agent and wait for its result.",
		Parameters: []tool.Parameter{
			{Name: "agent_id", Type: tool.ParamString, Required: true, Description: "Target agent to delegate to"},
			{Name: "task_description", Type: tool.ParamString, Required: true, Description: "What the target agent should do"},
			{Name: "context", Type: tool.ParamObject, Required: false, Description: "Delegation chain bookkeeping, carried automatically between nested calls"},
		},
		Visibility: tool.VisibilityDefault{Level: chain.VisibilitySummary},
	}
}

func (t *SubAgentTool) ValidateArguments(args map[string]any) error {
	agentID, _ := args["agent_id"].(string)
	if strings.TrimSpace(agentID) == "" {
		return fmt.Errorf("sub_agent tool requires a non-empty 'agent_id' argument")
	}
	taskDescription, _ := args["task_description"].(string)
	if strings.TrimSpace(taskDescription) == "" {
		return fmt.Errorf("sub_agent tool requires a non-empty 'task_description' argument")
	}
	return nil
}

func (t *SubAgentTool) Execute(ctx context.Context, callCtx tool.CallContext, args map[string]any) (tool.Result, error) {
	agentID, _ := args["agent_id"].(string)
	taskDescription, _ := args["task_description"].(string)

	delegationChain := extractChain(args["context"])
	for _, ancestor := range delegationChain {
		if ancestor == callCtx.AgentID {
			return tool.Result{Success: false, Error: fmt.Sprintf("cycle detected: agent %q already appears in the delegation chain", callCtx.AgentID)}, nil
		}
	}

	state, messages, artifacts, err := t.runner.RunSubAgent(ctx, agentID, taskDescription, callCtx)
	if err != nil {
		return tool.Result{Success: false, Error: err.Error()}, nil
	}

	nextChain := append(append([]string{}, delegationChain...), callCtx.AgentID)
	result := map[string]any{
		"sub_chain_id": uuid.New().String(),
		"agent_id":     agentID,
		"final_state":  string(state),
		"messages":     messages,
		"artifacts":    artifacts,
		"context":      map[string]any{agentChainKey: nextChain},
	}
	return tool.Result{Success: true, Result: result}, nil
}

func extractChain(raw any) []string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m[agentChainKey].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// collectMessages drains a sub-agent's event stream into a flat list of
// message texts, for runners built directly over an event.Event channel.
func collectMessages(stream <-chan event.Event) (state task.State, messages []string, artifacts []string) {
	for ev := range stream {
		switch ev.Kind {
		case event.KindMessage:
			for _, p := range ev.MessageParts {
				messages = append(messages, p.Text)
			}
		case event.KindArtifact:
			artifacts = append(artifacts, ev.TaskArtifact.Name)
		case event.KindDone:
			state = ev.FinalState
		}
	}
	return state, messages, artifacts
}
