package skill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaycortex/agentcore/pkg/tool"
)

func TestPseudoTool_ValidateArguments_RequiresName(t *testing.T) {
	pt := NewPseudoTool(NewLoader(t.TempDir(), "", ""))
	assert.Error(t, pt.ValidateArguments(map[string]any{}))
	assert.NoError(t, pt.ValidateArguments(map[string]any{"name": "my-skill"}))
}

func TestPseudoTool_Execute_ReturnsSkillContent(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "my-skill", "---\nname: my-skill\ndescription: A skill that formats things.\nallowed-tools: Read\n---\n\nDo the thing.\n")

	pt := NewPseudoTool(NewLoader(dir, "", ""))
	result, err := pt.Execute(context.Background(), tool.CallContext{}, map[string]any{"name": "my-skill"})
	require.NoError(t, err)
	require.True(t, result.Success)

	m := result.Result.(map[string]any)
	assert.Equal(t, "my-skill", m["skill_name"])
	assert.Contains(t, m["content"], "Do the thing.")
	assert.Equal(t, "Read", m["allowed_tools"])
}

func TestPseudoTool_Execute_NotFoundSuggestsNearestName(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "format-json", validSkillDoc("format-json", "A skill that formats JSON files.", "body"))

	pt := NewPseudoTool(NewLoader(dir, "", ""))
	result, err := pt.Execute(context.Background(), tool.CallContext{}, map[string]any{"name": "format-jsonn"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "format-json")
}

func TestPseudoTool_Execute_InvalidSkillReturnsFailure(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "broken-skill", "---\nname: broken-skill\n---\n\nbody\n")

	pt := NewPseudoTool(NewLoader(dir, "", ""))
	result, err := pt.Execute(context.Background(), tool.CallContext{}, map[string]any{"name": "broken-skill"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed validation")
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 1, levenshtein("abc", "abd"))
	assert.Equal(t, 3, levenshtein("", "abc"))
}
