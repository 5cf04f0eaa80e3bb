package chain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStep_AutoNumbersSequentially(t *testing.T) {
	c := New("task-1", "agent-1", "")

	s1, err := c.AddStep(NewStep(StepThinking))
	require.NoError(t, err)
	s2, err := c.AddStep(NewStep(StepToolCall))
	require.NoError(t, err)
	s3, err := c.AddStep(NewStep(StepSynthesis))
	require.NoError(t, err)

	assert.Equal(t, 0, s1.StepNumber)
	assert.Equal(t, 1, s2.StepNumber)
	assert.Equal(t, 2, s3.StepNumber)

	steps := c.Steps()
	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, i, s.StepNumber)
	}
}

func TestAddStep_MetricsAccumulation(t *testing.T) {
	c := New("task-1", "agent-1", "")

	thinking := NewStep(StepThinking)
	thinking.TokensUsed = 100
	thinking.Cost = 0.002
	_, err := c.AddStep(thinking)
	require.NoError(t, err)

	toolCallStep := NewStep(StepToolCall)
	toolCallStep.TokensUsed = 50
	toolCallStep.Cost = 0.001
	toolCallStep.ToolCall = &ToolCallInfo{ToolName: "search", ToolType: ToolSearch, CorrelationID: "corr-1"}
	_, err = c.AddStep(toolCallStep)
	require.NoError(t, err)

	toolResultStep := NewStep(StepToolResult)
	toolResultStep.ToolResult = &ToolResultInfo{CorrelationID: "corr-1", Success: true}
	_, err = c.AddStep(toolResultStep)
	require.NoError(t, err)

	synthesis := NewStep(StepSynthesis)
	synthesis.TokensUsed = 75
	synthesis.Cost = 0.0015
	_, err = c.AddStep(synthesis)
	require.NoError(t, err)

	m := c.Metrics()
	assert.Equal(t, 4, m.TotalSteps)
	assert.Equal(t, 2, m.LLMCalls) // thinking + synthesis
	assert.Equal(t, 1, m.ToolCalls)
	assert.Equal(t, 225, m.TotalTokens)
	assert.InDelta(t, 0.0045, m.TotalCost, 1e-9)
}

func TestAddStep_ToolResultRequiresMatchingToolCall(t *testing.T) {
	c := New("task-1", "agent-1", "")

	orphan := NewStep(StepToolResult)
	orphan.ToolResult = &ToolResultInfo{CorrelationID: "nonexistent", Success: true}

	_, err := c.AddStep(orphan)
	require.Error(t, err)
}

func TestAddStep_RejectsWritesAfterTerminal(t *testing.T) {
	c := New("task-1", "agent-1", "")
	_, err := c.AddStep(NewStep(StepThinking))
	require.NoError(t, err)

	c.Finish(StatusCompleted)

	_, err = c.AddStep(NewStep(StepThinking))
	require.Error(t, err)
	assert.Len(t, c.Steps(), 1)
}

func TestAddChildChain(t *testing.T) {
	c := New("task-1", "agent-1", "")
	child := uuid.New()
	c.AddChildChain(child)
	assert.Equal(t, []uuid.UUID{child}, c.ChildChainIDs)
}

func TestPauseResume(t *testing.T) {
	c := New("task-1", "agent-1", "")
	c.Pause()
	assert.Equal(t, StatusPaused, c.Status)

	_, err := c.AddStep(NewStep(StepThinking))
	require.Error(t, err, "paused chain should reject writes until resumed")

	c.Resume()
	assert.Equal(t, StatusRunning, c.Status)
	_, err = c.AddStep(NewStep(StepThinking))
	require.NoError(t, err)
}
