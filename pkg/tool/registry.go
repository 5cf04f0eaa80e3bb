package tool

import (
	"fmt"
	"sort"
	"sync"

	"github.com/relaycortex/agentcore/pkg/agenterr"
)

// Registry holds the set of tools available to the reasoning engine and
// tool executor, keyed by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds (or replaces) a tool under its own declared name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Definition().Name] = t
}

// Get looks up a tool by name, returning *agenterr.Error(ToolNotFound) on
// a miss.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, agenterr.ToolNotFound(name)
	}
	return t, nil
}

// ListNames returns the registered tool names in sorted order.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the tool definitions for every registered tool,
// filtered by the given predicate (nil means "all"). Definition() is a
// pure getter in this contract (Register already evaluated it once to
// learn the tool's name), so there is no per-tool describe failure mode
// to tolerate here the way a reflective describe call might have one.
func (r *Registry) Definitions(allowed func(name string) bool) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if allowed != nil && !allowed(name) {
			continue
		}
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// ValidateArguments checks args against a Definition's declared parameters:
// every required parameter must be present. This is the default validator;
// tools with richer constraints implement their own ValidateArguments and
// are not required to call this helper.
func ValidateArguments(def Definition, args map[string]any) error {
	for _, p := range def.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			return agenterr.ToolValidation(def.Name, fmt.Sprintf("missing required parameter %q", p.Name))
		}
	}
	return nil
}
