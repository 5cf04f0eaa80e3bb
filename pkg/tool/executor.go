package tool

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/relaycortex/agentcore/pkg/agenterr"
	"github.com/relaycortex/agentcore/pkg/chain"
)

var tracer = otel.Tracer("github.com/relaycortex/agentcore/pkg/tool")

var (
	executionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agentcore_tool_executions_total",
		Help: "Tool executions, by tool name and outcome.",
	}, []string{"tool", "outcome"})
	retriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agentcore_tool_retries_total",
		Help: "Tool execution retries, by tool name.",
	}, []string{"tool"})
)

func init() {
	prometheus.MustRegister(executionsTotal, retriesTotal)
}

// defaultRetryablePatterns is the fallback set used when a tool declares no
// RetryConfig.RetryableErrors (mirrors original_source
// tools/executor.py._is_retryable_error's hard-coded fallback).
var defaultRetryablePatterns = []string{
	"Timeout", "Connection", "Network", "Temporary", "Throttle", "RateLimit", "ServiceUnavailable",
}

// RateLimiter throttles tool calls per tenant. Implementations must be safe
// for concurrent use (spec §5).
type RateLimiter interface {
	CheckLimit(ctx context.Context, tenantID, toolName string) error
}

// CostTracker records the cost/tokens of a tool call. Implementations must
// be safe for concurrent use (spec §5).
type CostTracker interface {
	TrackCost(ctx context.Context, taskID, toolName string, costUSD float64, tokens int) error
}

// SkillRestriction is the narrow view of an activated skill the executor
// needs to enforce restrictions, satisfied by *skill.Context without this
// package importing pkg/skill (keeping the dependency direction skill ->
// tool rather than a cycle).
type SkillRestriction interface {
	Name() string
	CheckToolAllowed(toolName string) error
	CheckToolArguments(toolName string, args map[string]any) error
}

// ChainRecorder is the subset of *chain.Chain the executor writes steps to.
type ChainRecorder interface {
	AddStep(step chain.Step) (chain.Step, error)
}

// Executor is the unified tool-execution hub: registry lookup, argument
// validation, skill-restriction enforcement, rate limiting, retries with
// backoff, hard timeouts, cost tracking, and chain-step recording.
//
// A single Executor instance is meant to serve one task's ReAct loop; its
// skill activation stack is per-executor (spec §4.4 "Concurrency").
type Executor struct {
	registry    *Registry
	rateLimiter RateLimiter
	costTracker CostTracker
	logger      *slog.Logger

	mu              sync.Mutex
	skillStack      []SkillRestriction
	skillStackNames map[string]int // name -> index, for O(1) activation checks
}

// NewExecutor builds an Executor. rateLimiter and costTracker may be nil.
func NewExecutor(registry *Registry, rateLimiter RateLimiter, costTracker CostTracker, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry:        registry,
		rateLimiter:     rateLimiter,
		costTracker:     costTracker,
		logger:          logger,
		skillStackNames: make(map[string]int),
	}
}

// Registry returns the tool registry this executor dispatches against, so
// collaborators (e.g. the reasoning engine's GetAvailableTools) can list
// definitions without the executor needing its own enumeration method.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// ActiveSkill returns the skill at the top of the activation stack, or nil
// if none is active.
func (e *Executor) ActiveSkill() SkillRestriction {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.skillStack) == 0 {
		return nil
	}
	return e.skillStack[len(e.skillStack)-1]
}

// ActivateSkill pushes a skill onto the activation stack. Returns
// *agenterr.Error(SkillAlreadyActive) if the skill's name is already on
// the stack.
func (e *Executor) ActivateSkill(s SkillRestriction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.skillStackNames[s.Name()]; exists {
		return agenterr.SkillAlreadyActive(s.Name())
	}

	e.skillStackNames[s.Name()] = len(e.skillStack)
	e.skillStack = append(e.skillStack, s)

	e.logger.Info("skill activated", "skill_name", s.Name(), "stack_depth", len(e.skillStack))
	return nil
}

// DeactivateSkill pops a skill off the stack. It must be at the top (LIFO
// discipline, spec §4.4); otherwise *agenterr.Error(SkillStackViolation) is
// returned and the stack is left unchanged.
func (e *Executor) DeactivateSkill(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.skillStack) == 0 || e.skillStack[len(e.skillStack)-1].Name() != name {
		top := ""
		if len(e.skillStack) > 0 {
			top = e.skillStack[len(e.skillStack)-1].Name()
		}
		return agenterr.SkillStackViolation(name, top)
	}

	e.skillStack = e.skillStack[:len(e.skillStack)-1]
	delete(e.skillStackNames, name)

	e.logger.Info("skill deactivated", "skill_name", name, "stack_depth", len(e.skillStack))
	return nil
}

// Execute runs a tool end-to-end: lookup, validation, skill-restriction
// check, rate limiting, chain TOOL_CALL step, retried execution with
// timeout, cost tracking, and chain TOOL_RESULT step.
func (e *Executor) Execute(ctx context.Context, toolName string, args map[string]any, callCtx CallContext, recorder ChainRecorder) (Result, error) {
	t, err := e.registry.Get(toolName)
	if err != nil {
		return Result{}, err
	}

	if err := t.ValidateArguments(args); err != nil {
		return Result{}, err
	}

	if active := e.ActiveSkill(); active != nil {
		if err := active.CheckToolAllowed(toolName); err != nil {
			e.logger.Warn("skill restriction blocked tool execution",
				"skill_name", active.Name(), "tool_name", toolName, "error", err)
			return Result{Success: false, Error: err.Error()}, nil
		}
		if err := active.CheckToolArguments(toolName, args); err != nil {
			e.logger.Warn("skill restriction blocked tool execution",
				"skill_name", active.Name(), "tool_name", toolName, "error", err)
			return Result{Success: false, Error: err.Error()}, nil
		}
	}

	if e.rateLimiter != nil && callCtx.TenantID != "" {
		if err := e.rateLimiter.CheckLimit(ctx, callCtx.TenantID, toolName); err != nil {
			return Result{}, agenterr.RateLimitExceeded(callCtx.TenantID, toolName)
		}
	}

	def := t.Definition()

	callStep := chain.NewStep(chain.StepToolCall)
	callStep.Visibility = chain.Visibility{Level: def.Visibility.Level}
	callStep.ToolCall = &chain.ToolCallInfo{
		ToolName:      toolName,
		ToolType:      def.Type,
		Parameters:    args,
		CorrelationID: callCtx.CorrelationID,
	}
	if _, err := recorder.AddStep(callStep); err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, "tool.execute", trace.WithAttributes())
	result, execErr := e.executeWithRetries(ctx, t, args, callCtx)
	span.End()
	if execErr != nil {
		return Result{}, execErr
	}

	if e.costTracker != nil {
		_ = e.costTracker.TrackCost(ctx, callCtx.TaskID, toolName, result.Cost, result.TokensUsed)
	}

	resultStep := chain.NewStep(chain.StepToolResult)
	resultStep.Visibility = chain.Visibility{Level: def.Visibility.Level}
	resultStep.TokensUsed = result.TokensUsed
	resultStep.Cost = result.Cost
	resultStep.ToolResult = &chain.ToolResultInfo{
		CorrelationID: callCtx.CorrelationID,
		Success:       result.Success,
		Result:        result.Result,
		Error:         result.Error,
	}
	if _, err := recorder.AddStep(resultStep); err != nil {
		return Result{}, err
	}

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	executionsTotal.WithLabelValues(toolName, outcome).Inc()

	return result, nil
}

// executeWithRetries runs the tool with exponential backoff, honoring a
// hard per-attempt timeout that is never retried (spec §4.4).
func (e *Executor) executeWithRetries(ctx context.Context, t Tool, args map[string]any, callCtx CallContext) (Result, error) {
	def := t.Definition()
	retryCfg := def.RetryConfig
	timeout := time.Duration(def.TimeoutMS) * time.Millisecond

	var lastErr string
	retries := 0

	for attempt := 0; attempt <= retryCfg.MaxRetries; attempt++ {
		start := time.Now()

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := t.Execute(attemptCtx, callCtx, args)
		cancel()
		duration := time.Since(start)

		if attemptCtx.Err() == context.DeadlineExceeded {
			return Result{}, agenterr.ToolTimeout(def.Name, def.TimeoutMS)
		}

		if err == nil {
			result.RetryCount = retries
			if result.Duration == 0 {
				result.Duration = duration
			}
			return result, nil
		}

		lastErr = err.Error()
		errType := errorTypeName(err)
		retryable := isRetryableError(errType, retryCfg)

		if !retryable || attempt >= retryCfg.MaxRetries {
			return Result{Success: false, Error: lastErr, Duration: duration, RetryCount: retries}, nil
		}

		retries++
		retriesTotal.WithLabelValues(def.Name).Inc()

		waitSeconds, hasHint := extractRateLimitWaitSeconds(lastErr)
		var backoff time.Duration
		if hasHint {
			backoff = time.Duration((waitSeconds + 0.5) * float64(time.Second))
			if def.Name == "llm" {
				if maxTokens, ok := args["max_tokens"]; ok {
					if n, ok := toInt(maxTokens); ok {
						args["max_tokens"] = int(float64(n) * 0.7)
					}
				}
			}
		} else {
			backoffMS := float64(retryCfg.BackoffMS) * math.Pow(retryCfg.BackoffMultiplier, float64(attempt))
			backoff = time.Duration(backoffMS) * time.Millisecond
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return Result{Success: false, Error: ctx.Err().Error(), Duration: duration, RetryCount: retries}, nil
		}
	}

	return Result{Success: false, Error: lastErr, RetryCount: retries}, nil
}

func errorTypeName(err error) string {
	type nameable interface{ ErrorType() string }
	if n, ok := err.(nameable); ok {
		return n.ErrorType()
	}
	return err.Error()
}

func isRetryableError(errType string, cfg RetryConfig) bool {
	patterns := cfg.RetryableErrors
	if len(patterns) == 0 {
		patterns = defaultRetryablePatterns
	}
	lowered := strings.ToLower(errType)
	for _, p := range patterns {
		if strings.Contains(lowered, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

var (
	waitSecondsRe = regexp.MustCompile(`(?i)try again in (\d+(?:\.\d+)?)s\b`)
	waitMillisRe  = regexp.MustCompile(`(?i)try again in (\d+(?:\.\d+)?)ms\b`)
	waitMinutesRe = regexp.MustCompile(`(?i)try again in (\d+(?:\.\d+)?)m\b`)
)

// extractRateLimitWaitSeconds parses a rate-limit error message for a
// suggested wait duration ("try again in 21s", "...in 810ms", "...in 2m"),
// matching original_source tools/executor.py._extract_rate_limit_wait_time.
func extractRateLimitWaitSeconds(msg string) (float64, bool) {
	if m := waitMillisRe.FindStringSubmatch(msg); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v / 1000.0, true
	}
	if m := waitSecondsRe.FindStringSubmatch(msg); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	if m := waitMinutesRe.FindStringSubmatch(msg); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * 60.0, true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
