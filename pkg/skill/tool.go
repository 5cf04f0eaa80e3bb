package skill

import (
	"context"
	"fmt"
	"strings"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// PseudoTool exposes skill lookup to the reasoning loop as an ordinary
// tool named "skill" (spec §4.5): the model can discover a skill's body
// and allowed-tools without the loader needing a bespoke dispatch path
// in the executor.
type PseudoTool struct {
	loader *Loader
}

// NewPseudoTool builds the "skill" tool over the given Loader.
func NewPseudoTool(loader *Loader) *PseudoTool {
	return &PseudoTool{loader: loader}
}

func (t *PseudoTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        "skill",
		Type:        chain.ToolOther,
		Description: "Look up a named skill's activation content (body, base path, allowed tools).",
		Parameters: []tool.Parameter{
			{Name: "name", Type: tool.ParamString, Required: true, Description: "Skill name to load"},
		},
		Visibility: tool.VisibilityDefault{Level: chain.VisibilitySummary},
	}
}

func (t *PseudoTool) ValidateArguments(args map[string]any) error {
	name, _ := args["name"].(string)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("skill tool requires a non-empty 'name' argument")
	}
	return nil
}

// Execute loads and validates the named skill, returning its activation
// content. It does not push onto or otherwise mutate any activation
// stack — that remains the caller's responsibility, same as any other
// tool result.
func (t *PseudoTool) Execute(ctx context.Context, callCtx tool.CallContext, args map[string]any) (tool.Result, error) {
	name, _ := args["name"].(string)

	s, validation, err := t.loader.Load(name)
	if err != nil {
		suggestion := t.nearestName(name)
		msg := err.Error()
		if suggestion != "" {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
		}
		return tool.Result{Success: false, Error: msg}, nil
	}

	if validation != nil && !validation.IsValid {
		return tool.Result{
			Success: false,
			Error:   fmt.Sprintf("skill %q failed validation: %s", name, strings.Join(validation.Errors, "; ")),
		}, nil
	}

	result := map[string]any{
		"skill_name": s.Metadata.Name,
		"base_path":  s.BaseDir,
		"content":    s.Body,
	}
	if s.Metadata.AllowedTools != "" {
		result["allowed_tools"] = s.Metadata.AllowedTools
	}
	return tool.Result{Success: true, Result: result}, nil
}

// nearestName suggests the closest known skill name by Levenshtein
// distance, for a typo'd lookup. Returns "" when nothing is close enough
// to be a plausible suggestion.
func (t *PseudoTool) nearestName(name string) string {
	names := t.loader.ListNames()
	best := ""
	bestDist := -1
	for _, candidate := range names {
		d := levenshtein(strings.ToLower(name), strings.ToLower(candidate))
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	threshold := len(name)/2 + 1
	if bestDist < 0 || bestDist > threshold {
		return ""
	}
	return best
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
