package orchestration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycortex/agentcore/pkg/task"
	"github.com/relaycortex/agentcore/pkg/tool"
)

type stubSubAgentRunner struct {
	state     task.State
	messages  []string
	artifacts []string
	err       error
}

func (r stubSubAgentRunner) RunSubAgent(ctx context.Context, agentID, taskDescription string, callCtx tool.CallContext) (task.State, []string, []string, error) {
	if r.err != nil {
		return "", nil, nil, r.err
	}
	return r.state, r.messages, r.artifacts, nil
}

func TestSubAgentTool_ValidateArguments(t *testing.T) {
	st := NewSubAgentTool(stubSubAgentRunner{})
	assert.Error(t, st.ValidateArguments(map[string]any{}))
	assert.Error(t, st.ValidateArguments(map[string]any{"agent_id": "billing"}))
	assert.NoError(t, st.ValidateArguments(map[string]any{"agent_id": "billing", "task_description": "do it"}))
}

func TestSubAgentTool_Execute_Success(t *testing.T) {
	st := NewSubAgentTool(stubSubAgentRunner{state: task.StateCompleted, messages: []string{"done"}, artifacts: []string{"out.json"}})
	result, err := st.Execute(context.Background(), tool.CallContext{AgentID: "parent"}, map[string]any{
		"agent_id": "billing", "task_description": "refund the user",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	payload := result.Result.(map[string]any)
	assert.Equal(t, "billing", payload["agent_id"])
	assert.Equal(t, "completed", payload["final_state"])

	ctxOut := payload["context"].(map[string]any)
	chainOut := ctxOut[agentChainKey].([]string)
	assert.Equal(t, []string{"parent"}, chainOut)
}

func TestSubAgentTool_Execute_DetectsCycle(t *testing.T) {
	st := NewSubAgentTool(stubSubAgentRunner{state: task.StateCompleted})
	args := map[string]any{
		"agent_id": "billing", "task_description": "refund",
		"context": map[string]any{agentChainKey: []any{"orchestrator", "parent"}},
	}
	result, err := st.Execute(context.Background(), tool.CallContext{AgentID: "parent"}, args)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "cycle detected")
}

func TestSubAgentTool_Execute_PropagatesRunnerError(t *testing.T) {
	st := NewSubAgentTool(stubSubAgentRunner{err: assert.AnError})
	result, err := st.Execute(context.Background(), tool.CallContext{AgentID: "parent"}, map[string]any{
		"agent_id": "billing", "task_description": "refund",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
}
