// Package tool defines the abstract tool contract (spec §6), the tool
// registry, and the ToolExecutor — the security and correlation hub that
// validates, rate-limits, retries, times out, and chain-records every
// tool invocation in the system.
package tool

import (
	"context"
	"time"

	"github.com/relaycortex/agentcore/pkg/chain"
)

// ParamType enumerates the declared JSON-ish types a Parameter may have.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	ParamArray   ParamType = "array"
)

// Parameter describes one named argument a tool accepts.
type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// RetryConfig controls ToolExecutor's retry/backoff behavior for a tool.
type RetryConfig struct {
	MaxRetries        int
	BackoffMS         int
	BackoffMultiplier float64
	// RetryableErrors, when non-empty, is the exhaustive list of
	// case-insensitive substrings an error's type name must contain to be
	// retried. When empty, ToolExecutor falls back to the default pattern
	// set (Timeout, Connection, Network, Temporary, Throttle, RateLimit,
	// ServiceUnavailable).
	RetryableErrors []string
}

// VisibilityDefault is the step visibility a tool's TOOL_CALL and
// TOOL_RESULT steps are recorded with. The Executor takes no per-call
// override.
type VisibilityDefault struct {
	Level chain.VisibilityLevel
}

// Definition is the static, registry-held description of a tool (spec §3).
type Definition struct {
	Name        string
	Type        chain.ToolType
	Description string
	Parameters  []Parameter
	Visibility  VisibilityDefault
	TimeoutMS   int
	RetryConfig RetryConfig
}

// CallContext carries identity/correlation data through every tool call
// (spec §3 ToolCallContext). It is used for rate limiting, cost
// accounting, and chain correlation.
type CallContext struct {
	CorrelationID string
	TaskID        string
	AgentID       string
	TenantID      string
	ChainID       string
}

// Result is the outcome of one tool execution (spec §3 ToolResult).
type Result struct {
	Success    bool
	Result     any
	Error      string
	Duration   time.Duration
	TokensUsed int
	Cost       float64
	RetryCount int
}

// Tool is the abstract contract every concrete tool implements (spec §6).
type Tool interface {
	Definition() Definition
	ValidateArguments(args map[string]any) error
	Execute(ctx context.Context, callCtx CallContext, args map[string]any) (Result, error)
}
