package reasoning

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

type stubTool struct {
	def    tool.Definition
	result tool.Result
	err    error
}

func (s *stubTool) Definition() tool.Definition { return s.def }
func (s *stubTool) ValidateArguments(args map[string]any) error {
	return tool.ValidateArguments(s.def, args)
}
func (s *stubTool) Execute(ctx context.Context, _ tool.CallContext, args map[string]any) (tool.Result, error) {
	return s.result, s.err
}

func newEngine(t *testing.T, tools ...tool.Tool) *Engine {
	t.Helper()
	reg := tool.NewRegistry()
	for _, tl := range tools {
		reg.Register(tl)
	}
	executor := tool.NewExecutor(reg, nil, nil, slog.Default())
	c := chain.New("task-1", "agent-1", "tenant-1")
	return New(c, executor, tool.CallContext{TaskID: "task-1", AgentID: "agent-1", TenantID: "tenant-1"})
}

func TestEngine_AddThinking(t *testing.T) {
	e := newEngine(t)
	conf := 0.9
	step, err := e.AddThinking("considering options", &conf)
	require.NoError(t, err)
	assert.Equal(t, chain.StepThinking, step.Type)
	assert.Equal(t, "considering options", step.Thinking.Content)
	assert.Equal(t, 1, e.Chain.Metrics().LLMCalls)
}

func TestEngine_AddThinking_RejectsOutOfRangeConfidence(t *testing.T) {
	e := newEngine(t)
	bad := 1.5
	_, err := e.AddThinking("nope", &bad)
	assert.Error(t, err)
}

func TestEngine_AddSynthesis(t *testing.T) {
	e := newEngine(t)
	s1, _ := e.AddThinking("step one", nil)
	step, err := e.AddSynthesis("combined answer", []uuid.UUID{s1.ID})
	require.NoError(t, err)
	assert.Equal(t, chain.StepSynthesis, step.Type)
	assert.Equal(t, []uuid.UUID{s1.ID}, step.Synthesis.Sources)
}

func TestEngine_CallTool_Success(t *testing.T) {
	stub := &stubTool{
		def: tool.Definition{Name: "echo", Type: chain.ToolFunction},
		result: tool.Result{
			Success: true,
			Result:  "hi",
		},
	}
	e := newEngine(t, stub)

	outcome, err := e.CallTool(context.Background(), "echo", map[string]any{}, nil)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "hi", outcome.Value)
	assert.NotEqual(t, uuid.Nil, outcome.StepID)

	metrics := e.Chain.Metrics()
	assert.Equal(t, 1, metrics.ToolCalls)
	assert.Equal(t, 2, metrics.TotalSteps) // TOOL_CALL + TOOL_RESULT
}

func TestEngine_CallLLM_RequiresExactlyOneOfPromptOrMessages(t *testing.T) {
	e := newEngine(t)

	_, err := e.CallLLM(context.Background(), LLMArgs{})
	assert.Error(t, err)

	_, err = e.CallLLM(context.Background(), LLMArgs{
		Prompt:   "hi",
		Messages: []map[string]any{{"role": "user", "content": "hi"}},
	})
	assert.Error(t, err)
}

func TestEngine_CallLLM_RoutesThroughLLMTool(t *testing.T) {
	llmStub := &stubTool{
		def: tool.Definition{
			Name: "llm",
			Type: chain.ToolAPI,
			Parameters: []tool.Parameter{
				{Name: "prompt", Required: false},
				{Name: "messages", Required: false},
			},
		},
		result: tool.Result{Success: true, Result: "the answer", TokensUsed: 12},
	}
	e := newEngine(t, llmStub)

	outcome, err := e.CallLLM(context.Background(), LLMArgs{Prompt: "what is 2+2?"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "the answer", outcome.Value)
}

func TestEngine_GetAvailableTools_FiltersByAllowList(t *testing.T) {
	good := &stubTool{def: tool.Definition{Name: "good"}}
	other := &stubTool{def: tool.Definition{Name: "other"}}
	e := newEngine(t, good, other)

	defs := e.GetAvailableTools(func(name string) bool { return name == "good" })
	require.Len(t, defs, 1)
	assert.Equal(t, "good", defs[0].Name)
}
