// Package event implements the task event stream an agent's ProcessTask
// emits, and the per-role visibility filter and redaction pass applied
// before events leave the process (spec §4.7).
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/task"
)

// Kind discriminates which event payload an Event carries.
type Kind string

const (
	KindStatus   Kind = "task_status"
	KindMessage  Kind = "task_message"
	KindArtifact Kind = "task_artifact"
	KindError    Kind = "task_error"
	KindDone     Kind = "task_done"
)

// MessagePart is one piece of a TaskMessageEvent's content (text today;
// shaped to admit structured parts later without an event schema change).
type MessagePart struct {
	Text string
}

// Artifact is a named output attached to a task (a file, a structured
// result blob, etc).
type Artifact struct {
	Name      string
	MediaType string
	Content   string
}

// Event is the tagged union emitted on an agent's event stream. Exactly
// one of the payload fields is populated, selected by Kind.
type Event struct {
	Kind      Kind
	TaskID    uuid.UUID
	Timestamp time.Time

	// KindStatus
	State task.State

	// KindMessage
	MessageParts []MessagePart
	IsPartial    bool
	visibility   chain.VisibilityLevel // explicit per-message override; zero value means "use default for Kind"

	// KindArtifact
	TaskArtifact Artifact

	// KindError
	ErrorCode    string
	ErrorMessage string

	// KindDone
	FinalState task.State
}

// NewStatusEvent builds a TaskStatusEvent, SUMMARY visibility by default.
func NewStatusEvent(taskID uuid.UUID, state task.State) Event {
	return Event{Kind: KindStatus, TaskID: taskID, State: state}
}

// NewMessageEvent builds a TaskMessageEvent. visibility overrides the
// Kind's default — callers pass chain.VisibilityFull for iteration/
// thought/observation content and chain.VisibilitySummary for high-level
// "Action: X"/"Final answer" content (spec §4.7).
func NewMessageEvent(taskID uuid.UUID, parts []MessagePart, isPartial bool, visibility chain.VisibilityLevel) Event {
	return Event{Kind: KindMessage, TaskID: taskID, MessageParts: parts, IsPartial: isPartial, visibility: visibility}
}

// NewArtifactEvent builds a TaskArtifactEvent, SUMMARY visibility.
func NewArtifactEvent(taskID uuid.UUID, artifact Artifact) Event {
	return Event{Kind: KindArtifact, TaskID: taskID, TaskArtifact: artifact}
}

// NewErrorEvent builds a TaskErrorEvent, SUMMARY visibility.
func NewErrorEvent(taskID uuid.UUID, code, message string) Event {
	return Event{Kind: KindError, TaskID: taskID, ErrorCode: code, ErrorMessage: message}
}

// NewDoneEvent builds a TaskDoneEvent. It has no visibility level — it is
// always forwarded regardless of role (spec §4.7).
func NewDoneEvent(taskID uuid.UUID, finalState task.State) Event {
	return Event{Kind: KindDone, TaskID: taskID, FinalState: finalState}
}

// Apply implements task.Event: it mutates t according to this event's
// kind (spec §4.1 apply_event). Implementing Apply here, rather than as
// a switch inside pkg/task, is what lets pkg/task stay ignorant of this
// package's tagged union while still driving the reducer from
// Manager.ProcessTask.
func (e Event) Apply(t *task.Task) {
	switch e.Kind {
	case KindStatus:
		t.ApplyStatus(e.State)
	case KindMessage:
		t.AppendMessage("agent", toTaskParts(e.MessageParts))
	case KindArtifact:
		t.AddArtifact(task.Artifact{
			Name:      e.TaskArtifact.Name,
			MediaType: e.TaskArtifact.MediaType,
			Content:   e.TaskArtifact.Content,
		})
	case KindError:
		t.Fail(e.ErrorCode, e.ErrorMessage)
	case KindDone:
		t.Finish(e.FinalState)
	}
}

func toTaskParts(parts []MessagePart) []task.MessagePart {
	out := make([]task.MessagePart, len(parts))
	for i, p := range parts {
		out[i] = task.MessagePart{Text: p.Text}
	}
	return out
}

// Visibility returns the effective visibility level for this event.
func (e Event) Visibility() chain.VisibilityLevel {
	switch e.Kind {
	case KindStatus, KindArtifact, KindError:
		return chain.VisibilitySummary
	case KindMessage:
		if e.visibility == "" {
			return chain.VisibilitySummary
		}
		return e.visibility
	case KindDone:
		return "" // no visibility: always forwarded
	default:
		return chain.VisibilitySummary
	}
}
