// Package chain implements the append-only reasoning chain: the per-task
// log of thinking/tool-call/tool-result/synthesis steps that every other
// subsystem (tool executor, ReAct driver, orchestration) writes into.
package chain

import (
	"time"

	"github.com/google/uuid"
)

// StepType discriminates which payload a ReasoningStep carries.
type StepType string

const (
	StepThinking   StepType = "thinking"
	StepToolCall   StepType = "tool_call"
	StepToolResult StepType = "tool_result"
	StepSynthesis  StepType = "synthesis"
)

// ToolType classifies the kind of tool a TOOL_CALL step invoked.
type ToolType string

const (
	ToolFunction   ToolType = "function"
	ToolAPI        ToolType = "api"
	ToolDatabase   ToolType = "database"
	ToolFileSystem ToolType = "file_system"
	ToolSearch     ToolType = "search"
	ToolOther      ToolType = "other"
)

// Status is the lifecycle state of a ReasoningChain.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPaused    Status = "paused"
)

// VisibilityLevel controls which roles a step or event is forwarded to.
type VisibilityLevel string

const (
	VisibilityFull    VisibilityLevel = "full"
	VisibilitySummary VisibilityLevel = "summary"
	VisibilityHidden  VisibilityLevel = "hidden"
)

// Visibility pairs a level with an optional human-readable reason (e.g.
// "contains PII").
type Visibility struct {
	Level  VisibilityLevel
	Reason string
}

// DefaultVisibility is VisibilityFull with no reason, the zero-value-safe
// default for steps that don't specify one.
func DefaultVisibility() Visibility { return Visibility{Level: VisibilityFull} }

// ThinkingInfo is the payload for a StepThinking step.
type ThinkingInfo struct {
	Content    string
	Confidence *float64 // optional, must be in [0,1] when present
}

// ToolCallInfo is the payload for a StepToolCall step.
type ToolCallInfo struct {
	ToolName      string
	ToolType      ToolType
	Parameters    map[string]any
	CorrelationID string
}

// ToolResultInfo is the payload for a StepToolResult step.
type ToolResultInfo struct {
	CorrelationID string
	Success       bool
	Result        any
	Error         string
}

// SynthesisInfo is the payload for a StepSynthesis step.
type SynthesisInfo struct {
	Content string
	Sources []uuid.UUID // step ids this synthesis drew from
}

// Step is one recorded entry in a ReasoningChain. Exactly one of the
// payload fields is populated, selected by Type — the tagged-union shape
// spec §9 asks for rather than a struct with every field optional and no
// discriminant.
type Step struct {
	ID            uuid.UUID
	StepNumber    int
	Type          StepType
	Timestamp     time.Time
	ParentStepID  *uuid.UUID
	Visibility    Visibility
	TokensUsed    int
	Cost          float64

	Thinking   *ThinkingInfo
	ToolCall   *ToolCallInfo
	ToolResult *ToolResultInfo
	Synthesis  *SynthesisInfo
}

// NewStep constructs a Step with generated ID, current timestamp, and the
// default (full) visibility. StepNumber is set to 0 here; Chain.AddStep
// always reassigns it to the chain's next slot, so callers never need to
// compute it themselves (resolves the Open Question in SPEC_FULL.md §10.1).
func NewStep(stepType StepType) Step {
	return Step{
		ID:         uuid.New(),
		Type:       stepType,
		Timestamp:  time.Now(),
		Visibility: DefaultVisibility(),
	}
}

// Metrics aggregates counters over a chain's steps.
type Metrics struct {
	TotalSteps  int
	LLMCalls    int
	ToolCalls   int
	TotalTokens int
	TotalCost   float64
}

// apply updates the metrics in place for one appended step, per spec §3:
// THINKING and SYNTHESIS increment LLMCalls, TOOL_CALL increments
// ToolCalls, TOOL_RESULT increments neither.
func (m *Metrics) apply(step Step) {
	m.TotalSteps++
	switch step.Type {
	case StepThinking, StepSynthesis:
		m.LLMCalls++
	case StepToolCall:
		m.ToolCalls++
	}
	m.TotalTokens += step.TokensUsed
	m.TotalCost += step.Cost
}
