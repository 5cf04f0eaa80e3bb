// Package reasoning wraps a reasoning chain with the convenience methods
// agents actually call: recorded thinking/synthesis steps, an LLM call
// routed through the tool executor as a synthetic "llm" tool, and tool
// calls delegated to the Tool Executor (spec §4.2).
package reasoning

import (
	"context"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// Outcome is the wrapped result shape exposed by CallLLM and CallTool:
// success/value/error plus the id of the step the result was recorded
// under, so a caller can cross-reference the chain.
type Outcome struct {
	Success bool
	Value   any
	Error   string
	StepID  uuid.UUID
}

// Engine wraps a *chain.Chain with the operations the ReAct driver and
// orchestration layer use to record reasoning and invoke tools/models.
type Engine struct {
	Chain    *chain.Chain
	Executor *tool.Executor
	CallCtx  tool.CallContext
}

// New builds a reasoning Engine over an existing chain and executor, using
// callCtx as the template for every tool/LLM call it makes (correlation id
// is regenerated per call; the rest is copied through).
func New(c *chain.Chain, executor *tool.Executor, callCtx tool.CallContext) *Engine {
	return &Engine{Chain: c, Executor: executor, CallCtx: callCtx}
}

// AddThinking records a THINKING step. confidence, when non-nil, must lie
// in [0, 1].
func (e *Engine) AddThinking(content string, confidence *float64) (chain.Step, error) {
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return chain.Step{}, agenterr.ArgumentErrorf("ArgumentError", "confidence must be in [0,1], got %v", *confidence)
	}
	step := chain.NewStep(chain.StepThinking)
	step.Thinking = &chain.ThinkingInfo{Content: content, Confidence: confidence}
	return e.Chain.AddStep(step)
}

// AddSynthesis records a SYNTHESIS step referencing the steps it drew from.
func (e *Engine) AddSynthesis(content string, sourceStepIDs []uuid.UUID) (chain.Step, error) {
	step := chain.NewStep(chain.StepSynthesis)
	step.Synthesis = &chain.SynthesisInfo{Content: content, Sources: sourceStepIDs}
	return e.Chain.AddStep(step)
}

// LLMArgs is the accepted argument set for CallLLM. Exactly one of Prompt
// and Messages must be set.
type LLMArgs struct {
	Prompt      string
	Messages    []map[string]any
	System      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// CallLLM invokes the language model as a TOOL_CALL/TOOL_RESULT pair on
// the synthetic "llm" tool (spec §4.2), so the same retry/timeout/backoff
// machinery governing every other tool call also governs model calls.
// Exactly one of args.Prompt / args.Messages must be provided.
func (e *Engine) CallLLM(ctx context.Context, args LLMArgs) (Outcome, error) {
	hasPrompt := args.Prompt != ""
	hasMessages := len(args.Messages) > 0
	if hasPrompt == hasMessages {
		return Outcome{}, agenterr.ArgumentRequired("exactly one of prompt or messages")
	}

	toolArgs := map[string]any{}
	if hasPrompt {
		toolArgs["prompt"] = args.Prompt
	} else {
		msgs := make([]any, 0, len(args.Messages))
		for _, m := range args.Messages {
			msgs = append(msgs, m)
		}
		toolArgs["messages"] = msgs
	}
	if args.System != "" {
		toolArgs["system"] = args.System
	}
	if args.Model != "" {
		toolArgs["model"] = args.Model
	}
	if args.Temperature != 0 {
		toolArgs["temperature"] = args.Temperature
	}
	if args.MaxTokens != 0 {
		toolArgs["max_tokens"] = args.MaxTokens
	}

	return e.callTool(ctx, "llm", toolArgs, nil)
}

// CallTool delegates to the Tool Executor, passing the engine's chain so
// the TOOL_CALL/TOOL_RESULT pair lands on it, and returns a wrapper
// carrying the underlying result plus the id of the TOOL_RESULT step.
// visibilityOverride is accepted but not applied: both steps are recorded
// at the tool's default visibility.
func (e *Engine) CallTool(ctx context.Context, toolName string, arguments map[string]any, visibilityOverride *chain.VisibilityLevel) (Outcome, error) {
	return e.callTool(ctx, toolName, arguments, visibilityOverride)
}

func (e *Engine) callTool(ctx context.Context, toolName string, arguments map[string]any, _ *chain.VisibilityLevel) (Outcome, error) {
	callCtx := e.CallCtx
	callCtx.CorrelationID = uuid.New().String()

	result, err := e.Executor.Execute(ctx, toolName, arguments, callCtx, e.Chain)
	if err != nil {
		return Outcome{}, err
	}

	var stepID uuid.UUID
	steps := e.Chain.Steps()
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if s.Type == chain.StepToolResult && s.ToolResult != nil && s.ToolResult.CorrelationID == callCtx.CorrelationID {
			stepID = s.ID
			break
		}
	}

	return Outcome{
		Success: result.Success,
		Value:   result.Result,
		Error:   result.Error,
		StepID:  stepID,
	}, nil
}

// GetAvailableTools lists the tool definitions visible to the engine,
// filtered by allowed (nil means "all").
func (e *Engine) GetAvailableTools(allowed func(name string) bool) []tool.Definition {
	return e.Executor.Registry().Definitions(allowed)
}
