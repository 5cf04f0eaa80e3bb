package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/task"
)

func TestRedact_AllSensitivePatterns(t *testing.T) {
	cases := map[string]string{
		"api_key=sk-12345":           "api_key=[REDACTED]",
		"password=hunter2":           "password=[REDACTED]",
		"token=abc.def.ghi":          "token=[REDACTED]",
		"secret=shh":                 "secret=[REDACTED]",
		"Authorization: Bearer xyz":  "authorization=[REDACTED]",
	}
	for input, want := range cases {
		assert.Contains(t, Redact(input), want, "input: %s", input)
	}
}

func TestRedact_CaseInsensitive(t *testing.T) {
	assert.Contains(t, Redact("API_KEY=secretvalue"), "api_key=[REDACTED]")
}

func TestRedact_LeavesOrdinaryTextUntouched(t *testing.T) {
	assert.Equal(t, "just some ordinary text", Redact("just some ordinary text"))
}

func TestFilterStream_EndUserGetsSummaryNotFull(t *testing.T) {
	taskID := uuid.New()
	in := make(chan Event, 3)
	in <- NewMessageEvent(taskID, []MessagePart{{Text: "internal thought"}}, false, chain.VisibilityFull)
	in <- NewMessageEvent(taskID, []MessagePart{{Text: "Final answer"}}, false, chain.VisibilitySummary)
	in <- NewDoneEvent(taskID, task.StateCompleted)
	close(in)

	var got []Event
	for ev := range FilterStream(in, RoleEndUser) {
		got = append(got, ev)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, "Final answer", got[0].MessageParts[0].Text)
	assert.Equal(t, KindDone, got[1].Kind)
}

func TestFilterStream_DeveloperGetsFull(t *testing.T) {
	taskID := uuid.New()
	in := make(chan Event, 1)
	in <- NewMessageEvent(taskID, []MessagePart{{Text: "internal thought"}}, false, chain.VisibilityFull)
	close(in)

	var got []Event
	for ev := range FilterStream(in, RoleDeveloper) {
		got = append(got, ev)
	}
	assert.Len(t, got, 1)
}

func TestFilterStream_RedactsMessageText(t *testing.T) {
	taskID := uuid.New()
	in := make(chan Event, 1)
	in <- NewMessageEvent(taskID, []MessagePart{{Text: "using api_key=sk-live-123 to call"}}, false, chain.VisibilityFull)
	close(in)

	var got []Event
	for ev := range FilterStream(in, RoleDeveloper) {
		got = append(got, ev)
	}
	assert.Contains(t, got[0].MessageParts[0].Text, "api_key=[REDACTED]")
}

func TestFilterStream_DoneEventAlwaysForwardedUnmodified(t *testing.T) {
	taskID := uuid.New()
	in := make(chan Event, 1)
	in <- NewDoneEvent(taskID, task.StateFailed)
	close(in)

	var got []Event
	for ev := range FilterStream(in, RoleEndUser) {
		got = append(got, ev)
	}
	assert.Len(t, got, 1)
	assert.Equal(t, task.StateFailed, got[0].FinalState)
}

func TestFilterStream_HiddenEventExcludedForEveryRole(t *testing.T) {
	taskID := uuid.New()
	in := make(chan Event, 1)
	in <- NewMessageEvent(taskID, []MessagePart{{Text: "secret internal step"}}, false, chain.VisibilityHidden)
	close(in)

	var got []Event
	for ev := range FilterStream(in, RoleDeveloper) {
		got = append(got, ev)
	}
	assert.Empty(t, got)
}
