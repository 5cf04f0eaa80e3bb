package agentregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycortex/agentcore/pkg/task"
)

type stubAgent struct{}

func (stubAgent) ProcessTask(ctx context.Context, t *task.Task) (<-chan task.Event, error) {
	ch := make(chan task.Event)
	close(ch)
	return ch, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register("agent-1", stubAgent{})

	a, err := r.Get("agent-1")
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestRegistry_GetMissingReturnsAgentNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("ghost")
	assert.Error(t, err)
}

func TestRegistry_AgentExists(t *testing.T) {
	r := NewRegistry()
	r.Register("agent-1", stubAgent{})
	assert.True(t, r.AgentExists("agent-1"))
	assert.False(t, r.AgentExists("ghost"))
}

func TestRegistry_ListIDsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", stubAgent{})
	r.Register("alpha", stubAgent{})
	assert.Equal(t, []string{"alpha", "zeta"}, r.ListIDs())
}
