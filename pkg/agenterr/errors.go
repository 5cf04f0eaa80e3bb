// Package agenterr defines the typed error kinds shared across the task,
// reasoning, tool, skill, and orchestration packages.
//
// The core never uses exceptions for control flow (see spec §9): skill
// restriction violations and retry exhaustion are reported as values
// (ToolResult.Success == false), not as panics or errors that unwind the
// ReAct loop. The kinds below are reserved for conditions that should
// actually abort a call chain (NotFound, InvalidTransition, IntegrityError,
// ResourceExhaustion) or be handled structurally by the caller
// (ArgumentError).
package agenterr

import "fmt"

// Kind classifies an error the way §7 of the spec groups failures.
type Kind string

const (
	KindArgument           Kind = "argument_error"
	KindNotFound           Kind = "not_found"
	KindInvalidTransition  Kind = "invalid_transition"
	KindSkillViolation     Kind = "skill_violation"
	KindResourceExhaustion Kind = "resource_exhaustion"
	KindExternalFailure    Kind = "external_failure"
	KindIntegrity          Kind = "integrity_error"
)

// Error is the single error type used throughout the core. Code identifies
// the specific condition (e.g. "AgentNotFound", "IterationLimitExceeded");
// Kind groups it for blanket handling (retry, abort-task, surface-to-client).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on Kind or Code: errors.Is(err, agenterr.NotFound)
// matches any NotFound-kind error regardless of Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying error to a new typed error without losing it
// from errors.Unwrap chains.
func Wrap(kind Kind, code string, err error, format string, args ...any) *Error {
	e := newf(kind, code, format, args...)
	e.Err = err
	return e
}

// Sentinel kind markers usable with errors.Is when only the Kind matters.
var (
	NotFound           = &Error{Kind: KindNotFound}
	ArgumentInvalid    = &Error{Kind: KindArgument}
	InvalidTransition  = &Error{Kind: KindInvalidTransition}
	SkillViolation     = &Error{Kind: KindSkillViolation}
	ResourceExhaustion = &Error{Kind: KindResourceExhaustion}
	ExternalFailure    = &Error{Kind: KindExternalFailure}
	Integrity          = &Error{Kind: KindIntegrity}
)

// Constructors for the specific named conditions in spec §7.

func AgentNotFound(agentID string) *Error {
	return newf(KindNotFound, "AgentNotFound", "agent %q not found", agentID)
}

func TaskNotFound(taskID string) *Error {
	return newf(KindNotFound, "TaskNotFound", "task %q not found", taskID)
}

func ToolNotFound(name string) *Error {
	return newf(KindNotFound, "ToolNotFound", "tool %q not found", name)
}

func SkillNotFound(name string) *Error {
	return newf(KindNotFound, "SkillNotFound", "skill %q not found", name)
}

func CredentialNotFound(id string) *Error {
	return newf(KindNotFound, "CredentialNotFound", "credential %q not found", id)
}

func ThreadNotFound(threadID string) *Error {
	return newf(KindNotFound, "ThreadNotFound", "thread %q not found", threadID)
}

func ToolValidation(tool, reason string) *Error {
	return newf(KindArgument, "ToolValidation", "tool %q argument validation failed: %s", tool, reason)
}

func ArgumentRequired(what string) *Error {
	return newf(KindArgument, "ArgumentRequired", "%s is required", what)
}

func InvalidTransitionErr(from, to string) *Error {
	return newf(KindInvalidTransition, "InvalidTransition", "cannot transition from %s to %s", from, to)
}

func SkillStackViolation(skillName, top string) *Error {
	return newf(KindInvalidTransition, "SkillStackViolation",
		"cannot deactivate skill %q: not at top of stack (top is %q)", skillName, top)
}

func SkillAlreadyActive(skillName string) *Error {
	return newf(KindInvalidTransition, "SkillAlreadyActive", "skill %q is already active", skillName)
}

func SkillToolNotAllowed(tool, skill string) *Error {
	return newf(KindSkillViolation, "SkillToolNotAllowed",
		"skill %q cannot use tool %q: not in its allowed-tools list", skill, tool)
}

func SkillScriptReadAttempt(path string) *Error {
	return newf(KindSkillViolation, "SkillScriptReadAttempt",
		"refusing to read %q: skills may not read their own hook scripts (context efficiency)", path)
}

func RateLimitExceeded(tenant, tool string) *Error {
	return newf(KindResourceExhaustion, "RateLimitExceeded",
		"rate limit exceeded for tenant %q calling tool %q", tenant, tool)
}

func IterationLimitExceeded(max int) *Error {
	return newf(KindResourceExhaustion, "IterationLimitExceeded", "exceeded max iterations (%d)", max)
}

func ToolTimeout(tool string, timeoutMS int) *Error {
	return newf(KindResourceExhaustion, "ToolTimeout", "tool %q exceeded timeout (%dms)", tool, timeoutMS)
}

func OAuthStateError(reason string) *Error {
	return newf(KindExternalFailure, "OAuthStateError", "oauth state invalid: %s", reason)
}

func OAuthTokenError(reason string) *Error {
	return newf(KindExternalFailure, "OAuthTokenError", "oauth token exchange failed: %s", reason)
}

func OAuthPermissionError(reason string) *Error {
	return newf(KindExternalFailure, "OAuthPermissionError", "oauth permission denied: %s", reason)
}

func IntegrityErrorf(format string, args ...any) *Error {
	return newf(KindIntegrity, "IntegrityError", format, args...)
}

func ArgumentErrorf(code, format string, args ...any) *Error {
	return newf(KindArgument, code, format, args...)
}

func HandoffAlreadyActive(threadID string) *Error {
	return newf(KindInvalidTransition, "HandoffAlreadyActive", "thread %q already has an active handoff", threadID)
}
